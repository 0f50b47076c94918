package rules

import (
	"sort"

	"agro-backend/internal/shared/metrics"
	"agro-backend/internal/shared/telemetry"
)

// Registry holds the loaded rulebook and evaluates it against request
// contexts. Evaluation is a pure data-driven fold: same context, same
// triggered set, same order.
type Registry struct {
	version string
	rules   []Rule
}

// NewRegistry constructs a Registry over validated rules.
func NewRegistry(version string, ruleSet []Rule) *Registry {
	rs := make([]Rule, len(ruleSet))
	copy(rs, ruleSet)
	return &Registry{version: version, rules: rs}
}

// Version reports the loaded rulepack version.
func (r *Registry) Version() string { return r.version }

// Len reports the number of loaded rules.
func (r *Registry) Len() int { return len(r.rules) }

// Lookup returns a rule by id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

// Evaluate runs every rule's predicate against the context and returns the
// triggered rules sorted by confidence weight descending (stable tie-break
// by rule id). A rule whose predicate cannot be evaluated is skipped and
// logged; evaluation of the remaining rules proceeds unaffected.
func (r *Registry) Evaluate(ctx Context) TriggeredRuleSet {
	var out TriggeredRuleSet
	for _, rule := range r.rules {
		triggered := true
		for _, cond := range rule.Conditions {
			ok, err := cond.Eval(ctx)
			if err != nil {
				telemetry.Warn("rules.predicate_skipped", map[string]any{
					"rule_id": rule.ID,
					"error":   err.Error(),
				})
				metrics.IncRuleSkipped()
				triggered = false
				break
			}
			if !ok {
				triggered = false
				break
			}
		}
		if triggered {
			out = append(out, Triggered{Rule: rule})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rule, out[j].Rule
		if a.ConfidenceWeight != b.ConfidenceWeight {
			return a.ConfidenceWeight > b.ConfidenceWeight
		}
		return a.ID < b.ID
	})
	return out
}
