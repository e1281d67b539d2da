package models

// Cashiers lists the operators allowed to record entries, sorted.
var Cashiers = []string{"Adanu", "Ejigayehu", "Emush", "Misrak", "Tigist", "Yemisrach"}

// Banks lists the institutions a credit can be recorded against, sorted.
var Banks = []string{
	"Abay", "Amhara", "Awash", "Bank of Abyssinia", "Bunna",
	"CBE", "Dashen", "Enat", "Hibret", "Lion", "Nib", "Telebirr", "Wegagen", "Zemen",
}

func IsCashier(name string) bool {
	return contains(Cashiers, name)
}

func IsBank(name string) bool {
	return contains(Banks, name)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
