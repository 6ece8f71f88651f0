package model

// CharacteristicKeys is the fixed set of characteristic keys every
// canonical sheet carries, in display order.
var CharacteristicKeys = []string{
	"ws", "bs", "s", "t", "ag", "int", "per", "wp", "fel",
}

// CanonicalSkills is the full skill vocabulary. Every stored sheet
// enumerates all of these; extra client-supplied skills are preserved
// on top of them.
var CanonicalSkills = []string{
	"Acrobatics",
	"Awareness",
	"Barter",
	"Carouse",
	"Charm",
	"Chem-Use",
	"Ciphers",
	"Climb",
	"Command",
	"Commerce",
	"Common Lore",
	"Concealment",
	"Contortionist",
	"Deceive",
	"Demolition",
	"Disguise",
	"Dodge",
	"Drive",
	"Evaluate",
	"Forbidden Lore",
	"Gamble",
	"Inquiry",
	"Interrogation",
	"Intimidate",
	"Invocation",
	"Lip Reading",
	"Literacy",
	"Logic",
	"Medicae",
	"Navigation",
	"Performer",
	"Pilot",
	"Psyniscience",
	"Scholastic Lore",
	"Scrutiny",
	"Search",
	"Security",
	"Shadowing",
	"Silent Move",
	"Sleight of Hand",
	"Speak Language",
	"Survival",
	"Swim",
	"Tactics",
	"Tech-Use",
	"Tracking",
	"Trade",
	"Wrangling",
}
