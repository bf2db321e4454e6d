package match

import "casesync/internal/model"

// KeywordTable maps a document slot key to the normalized keywords that vote
// for it. Keywords must already be lowercase and diacritic-free; they are
// compared against tokens produced by Tokenize.
type KeywordTable map[string][]string

// DefaultKeywords is the built-in keyword table. English and Polish terms are
// mixed because both appear in scanned case documents. The table is plain
// data: swapping or extending it does not touch any matching logic.
var DefaultKeywords = KeywordTable{
	model.SlotBirth:          {"birth", "urodzenia", "urodzenie", "born", "geburtsurkunde"},
	model.SlotMarriage:       {"marriage", "malzenstwa", "slub", "slubu", "wedding"},
	model.SlotNaturalization: {"naturalization", "naturalizacja", "citizenship", "obywatelstwo", "obywatelstwa"},
	model.SlotPassport:       {"passport", "paszport", "paszportu"},
	model.SlotDeath:          {"death", "zgonu", "zgon", "deceased"},
	model.SlotResidence:      {"residence", "residency", "zamieszkania", "meldunek", "zameldowania", "address"},
	model.SlotMilitary:       {"military", "wojskowa", "wojskowej", "wojsko", "army", "ksiazeczka"},
	model.SlotEducation:      {"education", "school", "diploma", "dyplom", "szkola", "swiadectwo", "studies"},
	model.SlotEmployment:     {"employment", "employer", "praca", "pracy", "zatrudnienia", "zatrudnienie", "work"},
	model.SlotCriminal:       {"criminal", "police", "niekaralnosci", "karalnosci", "rejestr"},
	model.SlotOther:          {"document", "dokument", "letter", "list", "certificate", "zaswiadczenie"},
	// doc_misc has no keywords: it is the fallback when nothing else clears
	// the confidence threshold.
	model.SlotMisc: {},
}
