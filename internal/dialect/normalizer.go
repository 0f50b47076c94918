package dialect

import (
	"strings"
	"unicode"
)

// Detection reports which dialect was applied during normalization.
type Detection struct {
	Dialect  string `json:"dialect"`
	TermHits int    `json:"termHits"`
	Matched  bool   `json:"matched"`
}

// Normalizer applies whole-word, case-preserving substitutions between
// regional vocabulary and the standard form. No semantic reordering.
type Normalizer struct {
	table *Table
}

// NewNormalizer constructs a Normalizer over the given table.
func NewNormalizer(table *Table) *Normalizer {
	return &Normalizer{table: table}
}

// Normalize substitutes every recognized regional term with its standard
// equivalent. If dialect is empty, the text is scored against each known
// dialect's term set and the best match wins; ties fall back to standard.
// Unmatched tokens pass through untouched.
func (n *Normalizer) Normalize(text, dialect string) (string, Detection) {
	name := strings.ToLower(strings.TrimSpace(dialect))
	if name == "" {
		name = n.detect(text)
	}
	if name == Standard || !n.table.Known(name) {
		return text, Detection{Dialect: Standard}
	}

	mapping := n.table.toStandard[name]
	out := text
	hits := 0
	for _, term := range n.table.terms[name] {
		var c int
		out, c = replaceWholeWord(out, term, mapping[term])
		hits += c
	}
	return out, Detection{Dialect: name, TermHits: hits, Matched: hits > 0}
}

// Localize applies the inverse mapping, substituting standard terms with
// regional equivalents for vocabulary present in the table. Unknown terms and
// unknown dialects pass through unchanged.
func (n *Normalizer) Localize(text, dialect string) string {
	name := strings.ToLower(strings.TrimSpace(dialect))
	if name == Standard || !n.table.Known(name) {
		return text
	}

	inverse := n.table.toRegional[name]
	// Longest standard terms first, same reason as in Normalize.
	terms := make([]string, 0, len(inverse))
	for standard := range inverse {
		terms = append(terms, standard)
	}
	sortByLengthDesc(terms)

	out := text
	for _, term := range terms {
		out, _ = replaceWholeWord(out, term, inverse[term])
	}
	return out
}

// detect scores the text against each dialect's term set. Ties and zero
// scores declare standard.
func (n *Normalizer) detect(text string) string {
	best, bestScore, tied := Standard, 0, false
	for _, name := range n.table.Dialects() {
		score := 0
		for _, term := range n.table.terms[name] {
			_, c := replaceWholeWord(text, term, term)
			score += c
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return Standard
	}
	return best
}

func sortByLengthDesc(terms []string) {
	for i := 1; i < len(terms); i++ {
		for j := i; j > 0; j-- {
			a, b := terms[j-1], terms[j]
			if len(b) > len(a) || (len(b) == len(a) && b < a) {
				terms[j-1], terms[j] = b, a
			} else {
				break
			}
		}
	}
}

// replaceWholeWord substitutes whole-word occurrences of from (matched
// case-insensitively) with to, preserving a leading capital. Returns the new
// text and the number of substitutions.
func replaceWholeWord(text, from, to string) (string, int) {
	rt := []rune(text)
	rf := []rune(strings.ToLower(from))
	if len(rf) == 0 {
		return text, 0
	}

	var out []rune
	count := 0
	for i := 0; i < len(rt); {
		if matchesAt(rt, rf, i) && boundary(rt, i-1) && boundary(rt, i+len(rf)) {
			rep := []rune(to)
			if len(rep) > 0 && unicode.IsUpper(rt[i]) {
				rep[0] = unicode.ToUpper(rep[0])
			}
			out = append(out, rep...)
			i += len(rf)
			count++
			continue
		}
		out = append(out, rt[i])
		i++
	}
	return string(out), count
}

func matchesAt(text, lowerTerm []rune, at int) bool {
	if at+len(lowerTerm) > len(text) {
		return false
	}
	for k, r := range lowerTerm {
		if unicode.ToLower(text[at+k]) != r {
			return false
		}
	}
	return true
}

// boundary reports whether position idx sits outside a word run.
func boundary(text []rune, idx int) bool {
	if idx < 0 || idx >= len(text) {
		return true
	}
	return !unicode.IsLetter(text[idx]) && !unicode.IsDigit(text[idx])
}
