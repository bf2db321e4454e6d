package match_test

import (
	"reflect"
	"testing"

	"casesync/internal/caserepo"
	"casesync/internal/match"
	"casesync/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Żółć", "zolc"},
		{"KOWALSKI", "kowalski"},
		{"Akt Urodzenia", "akt urodzenia"},
		{"café", "cafe"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := match.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Jan_Kowalski_akt_urodzenia.pdf", []string{"jan", "kowalski", "akt", "urodzenia"}},
		{"birth-cert scan.v2.jpg", []string{"birth", "cert", "scan", "v2"}},
		{"IMG_0042.JPG", []string{"img", "0042"}},
		{".hidden", []string{"hidden"}},
	}
	for _, tt := range tests {
		if got := match.Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCaseToken(t *testing.T) {
	tests := []struct {
		path string
		root string
		want string
	}{
		{"/CASES/SMITH_JOHN/passport.jpg", "/CASES", "SMITH_JOHN"},
		{"/CASES/ABC123/scan.pdf", "/CASES/", "ABC123"},
		{"/CASES/loose_file.pdf", "/CASES", ""},
		{"/OTHER/SMITH_JOHN/passport.jpg", "/CASES", ""},
		{"/CASES/A/B/C/deep.pdf", "/CASES", "A"},
	}
	for _, tt := range tests {
		if got := match.CaseToken(tt.path, tt.root); got != tt.want {
			t.Errorf("CaseToken(%q, %q) = %q, want %q", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestMatcher_GuessSlots(t *testing.T) {
	m := match.New("/CASES", caserepo.NewMemoryRepository(), 0)

	t.Run("exact keyword match", func(t *testing.T) {
		got := m.GuessSlots("Jan_Kowalski_akt_urodzenia.pdf")
		if len(got) != 1 {
			t.Fatalf("GuessSlots() = %v, want exactly 1 match", got)
		}
		if got[0].Key != model.SlotBirth {
			t.Errorf("GuessSlots() top key = %s, want %s", got[0].Key, model.SlotBirth)
		}
		if got[0].Confidence != 0.25 {
			t.Errorf("GuessSlots() confidence = %v, want 0.25", got[0].Confidence)
		}
	})

	t.Run("exact outranks partial", func(t *testing.T) {
		got := m.GuessSlots("birth_cert_scan.pdf")
		if len(got) < 2 {
			t.Fatalf("GuessSlots() = %v, want at least 2 matches", got)
		}
		if got[0].Key != model.SlotBirth {
			t.Errorf("top key = %s, want %s", got[0].Key, model.SlotBirth)
		}
		if got[1].Key != model.SlotOther {
			t.Errorf("second key = %s, want %s", got[1].Key, model.SlotOther)
		}
		if got[0].Confidence <= got[1].Confidence {
			t.Errorf("confidences not descending: %v", got)
		}
	})

	t.Run("fallback when nothing clears threshold", func(t *testing.T) {
		got := m.GuessSlots("IMG_0042.jpg")
		want := []model.SlotMatch{{Key: model.SlotMisc, Confidence: 0.05}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("GuessSlots() = %v, want %v", got, want)
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first := m.GuessSlots("paszport_scan_document.pdf")
		for i := 0; i < 10; i++ {
			if got := m.GuessSlots("paszport_scan_document.pdf"); !reflect.DeepEqual(got, first) {
				t.Fatalf("GuessSlots() run %d = %v, want %v", i, got, first)
			}
		}
	})

	t.Run("at most three matches", func(t *testing.T) {
		// Every token is an exact keyword of a different slot.
		got := m.GuessSlots("birth_marriage_passport_death_military.pdf")
		if len(got) > 3 {
			t.Errorf("GuessSlots() returned %d matches, want at most 3", len(got))
		}
	})
}

func TestScoreTokens_TieBreak(t *testing.T) {
	table := match.KeywordTable{
		"doc_b": {"alpha"},
		"doc_a": {"alpha"},
	}
	got := match.ScoreTokens([]string{"alpha"}, table, 0.1)
	if len(got) != 2 {
		t.Fatalf("ScoreTokens() = %v, want 2 matches", got)
	}
	if got[0].Key != "doc_a" || got[1].Key != "doc_b" {
		t.Errorf("equal confidences not ordered by key: %v", got)
	}
}

func TestMatcher_GuessCase(t *testing.T) {
	newRepo := func(t *testing.T, cases ...*model.Case) *caserepo.MemoryRepository {
		t.Helper()
		repo := caserepo.NewMemoryRepository()
		for _, c := range cases {
			if err := repo.Create(c); err != nil {
				t.Fatalf("Create(%s) error = %v", c.ID, err)
			}
		}
		return repo
	}

	t.Run("exact code match wins", func(t *testing.T) {
		repo := newRepo(t,
			&model.Case{ID: "c1", Code: "ABC123", DisplayName: "Anna Kowalski"},
			&model.Case{ID: "c2", Code: "XYZ789", DisplayName: "John Smith"},
		)
		m := match.New("/CASES", repo, 0)

		got, err := m.GuessCase("/CASES/ABC123/scan.pdf")
		if err != nil {
			t.Fatalf("GuessCase() error = %v", err)
		}
		if got != "c1" {
			t.Errorf("GuessCase() = %q, want %q", got, "c1")
		}
	})

	t.Run("name token matches display name", func(t *testing.T) {
		repo := newRepo(t,
			&model.Case{ID: "c1", DisplayName: "Anna Kowalski"},
			&model.Case{ID: "c2", DisplayName: "John Smith"},
		)
		m := match.New("/CASES", repo, 0)

		got, err := m.GuessCase("/CASES/KOWALSKI_ANNA/akt_urodzenia.pdf")
		if err != nil {
			t.Fatalf("GuessCase() error = %v", err)
		}
		if got != "c1" {
			t.Errorf("GuessCase() = %q, want %q", got, "c1")
		}
	})

	t.Run("diacritics fold in name matching", func(t *testing.T) {
		repo := newRepo(t, &model.Case{ID: "c1", DisplayName: "Józef Żółkiewski"})
		m := match.New("/CASES", repo, 0)

		got, err := m.GuessCase("/CASES/ZOLKIEWSKI_JOZEF/passport.jpg")
		if err != nil {
			t.Fatalf("GuessCase() error = %v", err)
		}
		if got != "c1" {
			t.Errorf("GuessCase() = %q, want %q", got, "c1")
		}
	})

	t.Run("ambiguous name yields no guess", func(t *testing.T) {
		repo := newRepo(t,
			&model.Case{ID: "c1", DisplayName: "Anna Kowalski"},
			&model.Case{ID: "c2", DisplayName: "Anna Maria Kowalski"},
		)
		m := match.New("/CASES", repo, 0)

		got, err := m.GuessCase("/CASES/KOWALSKI_ANNA/scan.pdf")
		if err != nil {
			t.Fatalf("GuessCase() error = %v", err)
		}
		if got != "" {
			t.Errorf("GuessCase() = %q, want empty on ambiguity", got)
		}
	})

	t.Run("unknown folder yields no guess", func(t *testing.T) {
		repo := newRepo(t, &model.Case{ID: "c1", DisplayName: "Anna Kowalski"})
		m := match.New("/CASES", repo, 0)

		got, err := m.GuessCase("/CASES/NOWAK_JAN/scan.pdf")
		if err != nil {
			t.Fatalf("GuessCase() error = %v", err)
		}
		if got != "" {
			t.Errorf("GuessCase() = %q, want empty", got)
		}
	})

	t.Run("file directly under root yields no guess", func(t *testing.T) {
		repo := newRepo(t, &model.Case{ID: "c1", DisplayName: "Anna Kowalski"})
		m := match.New("/CASES", repo, 0)

		got, err := m.GuessCase("/CASES/loose_scan.pdf")
		if err != nil {
			t.Fatalf("GuessCase() error = %v", err)
		}
		if got != "" {
			t.Errorf("GuessCase() = %q, want empty", got)
		}
	})
}
