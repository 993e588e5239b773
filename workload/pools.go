package workload

var firstNames = []string{
	"Aaliyah", "Aaron", "Abigail", "Adam", "Adrian", "Aiden", "Alexa", "Alice",
	"Amelia", "Andre", "Angela", "Anthony", "Ari", "Ava", "Benjamin", "Bianca",
	"Brandon", "Brooke", "Caleb", "Camila", "Carlos", "Caroline", "Charles",
	"Chloe", "Christopher", "Claire", "Daniel", "Delilah", "Diego", "Dylan",
	"Eleanor", "Elena", "Elijah", "Emily", "Emma", "Ethan", "Evelyn", "Felix",
	"Fiona", "Gabriel", "Grace", "Hannah", "Harper", "Henry", "Isaac", "Isabella",
	"Jack", "Jacob", "James", "Jasmine", "Javier", "Jessica", "Jonathan", "Julia",
	"Kayla", "Kevin", "Layla", "Leah", "Leo", "Liam", "Lucas", "Lucy", "Madison",
	"Malik", "Maria", "Mason", "Maya", "Mia", "Michael", "Mila", "Nathan",
	"Nora", "Oliver", "Olivia", "Omar", "Owen", "Priya", "Rafael", "Riley",
	"Ryan", "Samuel", "Sara", "Sebastian", "Sofia", "Stella", "Theodore",
	"Thomas", "Valentina", "Victoria", "William", "Wyatt", "Xavier", "Yusuf",
	"Zoe",
}

var lastNames = []string{
	"Adams", "Alvarez", "Anderson", "Bailey", "Baker", "Bennett", "Brooks",
	"Brown", "Campbell", "Carter", "Castillo", "Chen", "Clark", "Collins",
	"Cook", "Cooper", "Cruz", "Davis", "Diaz", "Edwards", "Evans", "Fischer",
	"Flores", "Foster", "Garcia", "Gomez", "Gonzalez", "Gray", "Green",
	"Gutierrez", "Hall", "Harris", "Hernandez", "Hill", "Hughes", "Jackson",
	"James", "Johnson", "Jones", "Kelly", "Kim", "King", "Kowalski", "Lee",
	"Lewis", "Lopez", "Martin", "Martinez", "Miller", "Mitchell", "Moore",
	"Morales", "Morgan", "Murphy", "Nguyen", "Nelson", "OConnor", "Ortiz",
	"Parker", "Patel", "Perez", "Peterson", "Phillips", "Price", "Ramirez",
	"Reed", "Reyes", "Richardson", "Rivera", "Roberts", "Robinson", "Rodriguez",
	"Rogers", "Ross", "Russell", "Sanchez", "Sanders", "Schmidt", "Scott",
	"Singh", "Smith", "Stewart", "Sullivan", "Taylor", "Thomas", "Thompson",
	"Torres", "Turner", "Walker", "Ward", "Watson", "White", "Williams",
	"Wilson", "Wood", "Wright", "Young",
}

var namePrefixes = []string{"Mr.", "Mrs.", "Ms.", "Miss", "Dr."}

var nameSuffixes = []string{"Jr.", "Sr.", "I", "II", "III", "IV", "V", "MD", "DDS", "PhD"}

// Digits are substituted for '#'.
var phoneFormats = []string{
	"###-###-####",
	"(###) ###-####",
	"1-###-###-####",
	"###.###.####",
	"###-###-#### x###",
	"(###) ###-#### x####",
	"1-###-###-#### x#####",
	"###.###.#### x#####",
}
