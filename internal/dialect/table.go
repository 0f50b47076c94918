package dialect

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Standard is the dialect name of the normalized vocabulary itself.
const Standard = "standard"

//go:embed dialects.json
var defaultTableJSON []byte

type tableFile struct {
	Version  string                       `json:"version"`
	Dialects map[string]map[string]string `json:"dialects"`
}

// Table maps (dialect, regional term) to the standard term and back. Static
// configuration loaded at startup; safe for concurrent reads.
type Table struct {
	version string
	// dialect -> regional -> standard
	toStandard map[string]map[string]string
	// dialect -> standard -> regional
	toRegional map[string]map[string]string
	// per-dialect regional terms, longest first, for multi-word matching
	terms map[string][]string
}

// DefaultTable parses the embedded dialect table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTableJSON)
	if err != nil {
		// The embedded table is part of the build; a parse failure is a bug.
		panic(fmt.Sprintf("embedded dialect table invalid: %v", err))
	}
	return t
}

// ParseTable builds a Table from JSON configuration.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dialect table: %w", err)
	}
	if len(file.Dialects) == 0 {
		return nil, fmt.Errorf("dialect table has no dialects")
	}

	t := &Table{
		version:    file.Version,
		toStandard: make(map[string]map[string]string, len(file.Dialects)),
		toRegional: make(map[string]map[string]string, len(file.Dialects)),
		terms:      make(map[string][]string, len(file.Dialects)),
	}
	for name, pairs := range file.Dialects {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == Standard {
			return nil, fmt.Errorf("invalid dialect name %q", name)
		}
		fwd := make(map[string]string, len(pairs))
		inv := make(map[string]string, len(pairs))
		terms := make([]string, 0, len(pairs))
		for regional, standard := range pairs {
			regional = strings.ToLower(strings.TrimSpace(regional))
			standard = strings.ToLower(strings.TrimSpace(standard))
			if regional == "" || standard == "" {
				return nil, fmt.Errorf("dialect %s has an empty term pair", name)
			}
			fwd[regional] = standard
			inv[standard] = regional
			terms = append(terms, regional)
		}
		if len(inv) != len(fwd) {
			return nil, fmt.Errorf("dialect %s maps two regional terms to one standard term", name)
		}
		// Longest terms first so multi-word phrases win over their prefixes.
		sort.Slice(terms, func(i, j int) bool {
			if len(terms[i]) != len(terms[j]) {
				return len(terms[i]) > len(terms[j])
			}
			return terms[i] < terms[j]
		})
		t.toStandard[name] = fwd
		t.toRegional[name] = inv
		t.terms[name] = terms
	}
	return t, nil
}

// Version reports the loaded table version.
func (t *Table) Version() string { return t.version }

// Dialects lists known dialect names, sorted.
func (t *Table) Dialects() []string {
	out := make([]string, 0, len(t.toStandard))
	for name := range t.toStandard {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Known reports whether the dialect exists in the table.
func (t *Table) Known(dialect string) bool {
	_, ok := t.toStandard[strings.ToLower(strings.TrimSpace(dialect))]
	return ok
}
