package model

// Document slot keys. This enumeration is a compatibility surface shared with
// the case repository's document-slot schema: adding a category here requires
// updating the matcher keyword table and the case schema together.
const (
	SlotBirth          = "doc_birth"
	SlotMarriage       = "doc_marriage"
	SlotNaturalization = "doc_naturalization"
	SlotPassport       = "doc_passport"
	SlotDeath          = "doc_death"
	SlotResidence      = "doc_residence"
	SlotMilitary       = "doc_military"
	SlotEducation      = "doc_education"
	SlotEmployment     = "doc_employment"
	SlotCriminal       = "doc_criminal"
	SlotOther          = "doc_other"
	SlotMisc           = "doc_misc"
)

// SlotKeys lists all document slot keys in display order.
var SlotKeys = []string{
	SlotBirth,
	SlotMarriage,
	SlotNaturalization,
	SlotPassport,
	SlotDeath,
	SlotResidence,
	SlotMilitary,
	SlotEducation,
	SlotEmployment,
	SlotCriminal,
	SlotOther,
	SlotMisc,
}

// IsSlotKey reports whether key is a known document slot key.
func IsSlotKey(key string) bool {
	for _, k := range SlotKeys {
		if k == key {
			return true
		}
	}
	return false
}
