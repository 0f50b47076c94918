package intent

import (
	"sort"
	"strings"
	"unicode"
)

// Result carries the classified intent and the exact keywords that produced
// it. MatchedKeywords is always populated for auditability; classification is
// deterministic, not probabilistic.
type Result struct {
	Intent          Intent   `json:"intent"`
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// Matcher classifies normalized query text against the static pattern table.
type Matcher struct {
	table map[Intent][]pattern
	floor int
}

// NewMatcher constructs a Matcher over the built-in pattern table.
func NewMatcher() *Matcher {
	return &Matcher{table: patternTable, floor: minScore}
}

type scored struct {
	intent        Intent
	score         int
	matched       []string
	longestPhrase int
}

// Classify scores each canonical intent by weighted keyword and phrase hits.
// The highest score wins; ties break toward the intent with the longest
// matched phrase; below the floor the result is Unknown.
func (m *Matcher) Classify(text string) Result {
	lower := strings.ToLower(text)

	candidates := make([]scored, 0, len(m.table))
	for it, patterns := range m.table {
		s := scored{intent: it}
		for _, p := range patterns {
			if containsWholePhrase(lower, p.text) {
				s.score += p.weight
				s.matched = append(s.matched, p.text)
				if n := len([]rune(p.text)); n > s.longestPhrase {
					s.longestPhrase = n
				}
			}
		}
		if s.score > 0 {
			sort.Strings(s.matched)
			candidates = append(candidates, s)
		}
	}

	if len(candidates) == 0 {
		return Result{Intent: Unknown, MatchedKeywords: []string{}}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.longestPhrase != b.longestPhrase {
			return a.longestPhrase > b.longestPhrase
		}
		return a.intent < b.intent
	})

	best := candidates[0]
	if best.score < m.floor {
		return Result{Intent: Unknown, Score: best.score, MatchedKeywords: best.matched}
	}
	return Result{Intent: best.intent, Score: best.score, MatchedKeywords: best.matched}
}

// containsWholePhrase reports a case-folded whole-word occurrence of phrase
// in text. Both are expected lowercased already for text.
func containsWholePhrase(text, phrase string) bool {
	rt := []rune(text)
	rp := []rune(phrase)
	if len(rp) == 0 || len(rp) > len(rt) {
		return false
	}
	for i := 0; i+len(rp) <= len(rt); i++ {
		if !runesEqualFold(rt[i:i+len(rp)], rp) {
			continue
		}
		beforeOK := i == 0 || !isWordRune(rt[i-1])
		afterOK := i+len(rp) == len(rt) || !isWordRune(rt[i+len(rp)])
		if beforeOK && afterOK {
			return true
		}
	}
	return false
}

func runesEqualFold(a, b []rune) bool {
	for k := range b {
		if unicode.ToLower(a[k]) != unicode.ToLower(b[k]) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
