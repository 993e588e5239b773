package boltdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/weiihann/storebench/workload"
)

// Compression selects how document bodies are stored. Every stored value
// starts with a one-byte Compression tag followed by the body.
type Compression uint8

const (
	NoCompression     Compression = 0x0
	SnappyCompression Compression = 0x1
	LZ4Compression    Compression = 0x4
	ZstdCompression   Compression = 0x7
)

// String returns the flag spelling of the compression.
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case SnappyCompression:
		return "snappy"
	case LZ4Compression:
		return "lz4"
	case ZstdCompression:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a flag value. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoCompression, nil
	case "snappy":
		return SnappyCompression, nil
	case "lz4":
		return LZ4Compression, nil
	case "zstd":
		return ZstdCompression, nil
	default:
		return NoCompression, fmt.Errorf("unknown compression %q", s)
	}
}

// document is the stored shape of a record.
type document struct {
	ID       uint64 `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func toDocument(id uint64, r workload.Record) document {
	return document{
		ID:       id,
		Username: r.Username,
		FullName: r.FullName,
		Phone:    r.Phone,
	}
}

func (d document) record() workload.Record {
	return workload.Record{
		ID:       int64(d.ID),
		Username: d.Username,
		FullName: d.FullName,
		Phone:    d.Phone,
	}
}

// codec turns documents into tagged values and back. The zstd coder pair
// is created once per store; EncodeAll and DecodeAll are safe to reuse.
type codec struct {
	compression Compression
	zenc        *zstd.Encoder
	zdec        *zstd.Decoder
}

func newCodec(c Compression) (*codec, error) {
	cd := &codec{compression: c}

	var err error
	if cd.zenc, err = zstd.NewWriter(nil); err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	if cd.zdec, err = zstd.NewReader(nil); err != nil {
		cd.zenc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return cd, nil
}

func (c *codec) close() {
	c.zenc.Close()
	c.zdec.Close()
}

func (c *codec) encode(d document) ([]byte, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	var compressed []byte
	switch c.compression {
	case NoCompression:
		compressed = body
	case SnappyCompression:
		compressed = snappy.Encode(nil, body)
	case LZ4Compression:
		if compressed, err = compressLZ4(body); err != nil {
			return nil, err
		}
	case ZstdCompression:
		compressed = c.zenc.EncodeAll(body, nil)
	default:
		return nil, fmt.Errorf("unsupported compression %s", c.compression)
	}

	value := make([]byte, 0, len(compressed)+1)
	value = append(value, byte(c.compression))
	return append(value, compressed...), nil
}

// decode reads a value written with any compression, regardless of the
// codec's own setting.
func (c *codec) decode(value []byte) (document, error) {
	var d document
	if len(value) == 0 {
		return d, fmt.Errorf("empty document value")
	}

	var (
		body []byte
		err  error
	)
	switch tag := Compression(value[0]); tag {
	case NoCompression:
		body = value[1:]
	case SnappyCompression:
		body, err = snappy.Decode(nil, value[1:])
	case LZ4Compression:
		body, err = io.ReadAll(lz4.NewReader(bytes.NewReader(value[1:])))
	case ZstdCompression:
		body, err = c.zdec.DecodeAll(value[1:], nil)
	default:
		return d, fmt.Errorf("unsupported compression %s", tag)
	}
	if err != nil {
		return d, fmt.Errorf("decompress document: %w", err)
	}

	if err := json.Unmarshal(body, &d); err != nil {
		return d, fmt.Errorf("decode document: %w", err)
	}
	return d, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}
