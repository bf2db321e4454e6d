// Package match guesses which case and which document slot a remote file
// belongs to. Both guesses are best-effort heuristics: the case guess is left
// unset when it is not reasonably confident, and the slot guess always yields
// at least one (possibly low-confidence) match so a reviewer has something to
// confirm or override. Given the same inputs and keyword table the matcher is
// fully deterministic.
package match

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"casesync/internal/model"
)

const (
	// DefaultThreshold is the minimum confidence a slot guess must reach.
	DefaultThreshold = 0.15

	// fallbackConfidence marks the doc_misc guess emitted when no category
	// clears the threshold.
	fallbackConfidence = 0.05

	// maxSlotGuesses caps the number of slot matches kept per suggestion.
	maxSlotGuesses = 3

	exactWeight   = 1.0
	partialWeight = 0.5
	minPartialLen = 4
)

// CaseLookup is the narrow view of the case repository the matcher needs.
type CaseLookup interface {
	// FindByCode returns the case with an exact code match, or nil.
	FindByCode(code string) (*model.Case, error)

	// All returns every known case.
	All() ([]*model.Case, error)
}

// Matcher produces case and slot guesses for discovered files.
type Matcher struct {
	root      string // remote root, e.g. "/CASES"
	cases     CaseLookup
	keywords  KeywordTable
	threshold float64
}

// New creates a Matcher for the given remote root. A non-positive threshold
// selects DefaultThreshold.
func New(root string, cases CaseLookup, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		root:      root,
		cases:     cases,
		keywords:  DefaultKeywords,
		threshold: threshold,
	}
}

// SetKeywords replaces the keyword table. Intended for configuration and
// tests; the table is data, not logic.
func (m *Matcher) SetKeywords(table KeywordTable) {
	m.keywords = table
}

// CaseToken extracts the candidate case identifier from a remote path: the
// path segment immediately under the root. Returns "" when the path is not
// under the root or has no segment.
func CaseToken(remotePath, root string) string {
	rel := strings.TrimPrefix(remotePath, strings.TrimSuffix(root, "/"))
	if rel == remotePath || rel == "" {
		return ""
	}
	rel = strings.TrimPrefix(rel, "/")
	if i := strings.Index(rel, "/"); i >= 0 {
		return rel[:i]
	}
	// A file directly under the root has no case folder.
	return ""
}

// GuessCase returns the ID of the case the remote path most likely belongs
// to, or "" when there is no confident match. An exact case-code match on the
// path token wins; otherwise a LASTNAME_FIRSTNAME token is matched against
// case display names, and any ambiguity defers to human review.
func (m *Matcher) GuessCase(remotePath string) (string, error) {
	token := CaseToken(remotePath, m.root)
	if token == "" {
		return "", nil
	}

	c, err := m.cases.FindByCode(token)
	if err != nil {
		return "", fmt.Errorf("looking up case code %q: %w", token, err)
	}
	if c != nil {
		return c.ID, nil
	}

	last, first, ok := splitNameToken(token)
	if !ok {
		return "", nil
	}

	all, err := m.cases.All()
	if err != nil {
		return "", fmt.Errorf("listing cases: %w", err)
	}

	var found string
	for _, c := range all {
		dn := Normalize(c.DisplayName)
		if strings.Contains(dn, last) && strings.Contains(dn, first) {
			if found != "" {
				// Ambiguous: more than one case matches the name token.
				return "", nil
			}
			found = c.ID
		}
	}
	return found, nil
}

// splitNameToken checks whether token has the LASTNAME_FIRSTNAME shape and
// returns the normalized name parts.
func splitNameToken(token string) (last, first string, ok bool) {
	parts := strings.Split(token, "_")
	if len(parts) < 2 {
		return "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", false
		}
		for _, r := range p {
			if !unicode.IsLetter(r) {
				return "", "", false
			}
		}
	}
	return Normalize(parts[0]), Normalize(parts[1]), true
}

// GuessSlots scores the filename against the keyword table and returns the
// matches above the threshold, highest confidence first, capped at three.
// When nothing clears the threshold a single low-confidence doc_misc match is
// returned so the queue never shows a suggestion without a slot guess.
func (m *Matcher) GuessSlots(displayName string) []model.SlotMatch {
	tokens := Tokenize(displayName)
	matches := ScoreTokens(tokens, m.keywords, m.threshold)
	if len(matches) == 0 {
		return []model.SlotMatch{{Key: model.SlotMisc, Confidence: fallbackConfidence}}
	}
	if len(matches) > maxSlotGuesses {
		matches = matches[:maxSlotGuesses]
	}
	return matches
}

// ScoreTokens is the pure scoring function behind GuessSlots. Each category's
// raw score counts token-to-keyword overlaps (exact token==keyword matches
// weighted above partial substring matches), normalized by token count to a
// confidence in (0, 1]. Results are sorted by confidence descending with the
// slot key as a deterministic tie-break.
func ScoreTokens(tokens []string, table KeywordTable, threshold float64) []model.SlotMatch {
	if len(tokens) == 0 {
		return nil
	}

	var matches []model.SlotMatch
	for key, keywords := range table {
		raw := 0.0
		for _, token := range tokens {
			raw += tokenWeight(token, keywords)
		}
		confidence := raw / float64(len(tokens))
		if confidence > 1 {
			confidence = 1
		}
		if confidence > 0 && confidence >= threshold {
			matches = append(matches, model.SlotMatch{Key: key, Confidence: confidence})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Key < matches[j].Key
	})
	return matches
}

// tokenWeight returns the best weight a single token earns against a
// category's keyword list.
func tokenWeight(token string, keywords []string) float64 {
	best := 0.0
	for _, kw := range keywords {
		switch {
		case token == kw:
			return exactWeight
		case len(token) >= minPartialLen && len(kw) >= minPartialLen &&
			(strings.Contains(token, kw) || strings.Contains(kw, token)):
			if partialWeight > best {
				best = partialWeight
			}
		}
	}
	return best
}
