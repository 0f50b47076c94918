package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed rulepack.json
var defaultRulepackJSON []byte

type rulepackFile struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// DefaultRulepack parses the embedded rulepack.
func DefaultRulepack() *Registry {
	reg, err := ParseRulepack(defaultRulepackJSON)
	if err != nil {
		// The embedded rulepack is part of the build; a parse failure is a bug.
		panic(fmt.Sprintf("embedded rulepack invalid: %v", err))
	}
	return reg
}

// ParseRulepack validates a rulepack payload and builds a Registry.
// Validation is strict at load time so that per-request evaluation can fail
// closed on individual rules only.
func ParseRulepack(data []byte) (*Registry, error) {
	var file rulepackFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rulepack: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rulepack has no rules")
	}

	seen := make(map[string]bool, len(file.Rules))
	for _, r := range file.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rulepack contains a rule without ruleId")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
		if r.Category == "" {
			return nil, fmt.Errorf("rule %s: category is required", r.ID)
		}
		if r.ConfidenceWeight < 0 || r.ConfidenceWeight > 1 {
			return nil, fmt.Errorf("rule %s: confidenceWeight %v outside [0,1]", r.ID, r.ConfidenceWeight)
		}
		if !KnownDirective(r.Directive) {
			return nil, fmt.Errorf("rule %s: unknown directive %q", r.ID, r.Directive)
		}
		if len(r.Conditions) == 0 {
			return nil, fmt.Errorf("rule %s: at least one condition is required", r.ID)
		}
		if len(r.Templates) == 0 {
			return nil, fmt.Errorf("rule %s: at least one template is required", r.ID)
		}
		if r.CitationID == "" {
			return nil, fmt.Errorf("rule %s: citationId is required", r.ID)
		}
		for _, c := range r.Conditions {
			if c.Field == "" || c.Op == "" {
				return nil, fmt.Errorf("rule %s: condition missing field or op", r.ID)
			}
		}
	}

	return NewRegistry(file.Version, file.Rules), nil
}
