package rules

// Rule is one deterministic agronomy rule: a predicate over normalized
// context fields plus the recommendation it grounds. Rules are static,
// versioned configuration data and are never mutated at runtime.
type Rule struct {
	ID               string            `json:"ruleId"`
	Category         string            `json:"category"`
	Conditions       []Condition       `json:"conditions"`
	ConfidenceWeight float64           `json:"confidenceWeight"`
	Directive        string            `json:"directive"`
	Templates        map[string]string `json:"templates"`
	CitationID       string            `json:"citationId"`
}

// Template returns the localized recommendation text, falling back to the
// Azerbaijani text and then to any available language.
func (r Rule) Template(language string) string {
	if text, ok := r.Templates[language]; ok {
		return text
	}
	if text, ok := r.Templates["az"]; ok {
		return text
	}
	for _, text := range r.Templates {
		return text
	}
	return ""
}

// Triggered pairs a rule with the context evaluation that fired it.
type Triggered struct {
	Rule Rule
}

// TriggeredRuleSet is the ordered (confidence weight descending) result of
// evaluating the registry against one context. Recomputed per request.
type TriggeredRuleSet []Triggered

// ByCategory filters the set to rules of the given category, order kept.
func (s TriggeredRuleSet) ByCategory(category string) TriggeredRuleSet {
	var out TriggeredRuleSet
	for _, t := range s {
		if t.Rule.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Top returns the highest-weight triggered rule, if any.
func (s TriggeredRuleSet) Top() (Triggered, bool) {
	if len(s) == 0 {
		return Triggered{}, false
	}
	return s[0], true
}

// Directive pairs that name opposite actions for the same category. A
// triggered rule whose directive opposes the generated one is a
// contradiction.
var opposites = map[string]string{
	"irrigate":           "hold_irrigation",
	"hold_irrigation":    "irrigate",
	"fertilize":          "hold_fertilization",
	"hold_fertilization": "fertilize",
	"treat":              "hold_treatment",
	"hold_treatment":     "treat",
	"harvest_now":        "delay_harvest",
	"delay_harvest":      "harvest_now",
	"amend_soil":         "hold_amendment",
	"hold_amendment":     "amend_soil",
	// advise has no opposite; advisory rules never contradict.
	"advise": "",
}

// Opposes reports whether two directives name opposite actions.
func Opposes(a, b string) bool {
	return a != "" && opposites[a] == b
}

// KnownDirective reports whether the directive is part of the vocabulary.
func KnownDirective(d string) bool {
	_, ok := opposites[d]
	return ok
}
