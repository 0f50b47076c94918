package advisor

import (
	"fmt"
	"sort"
	"strings"

	"agro-backend/internal/review"
	"agro-backend/internal/rules"
)

// ScoreParams holds the tunable scoring constants.
type ScoreParams struct {
	PerRuleCap           float64
	AgreementBonus       float64
	CoveragePenalty      float64
	ContradictionPenalty float64
}

// DefaultScoreParams mirrors the config defaults for standalone use in tests.
func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		PerRuleCap:           0.4,
		AgreementBonus:       0.1,
		CoveragePenalty:      0.7,
		ContradictionPenalty: 0.5,
	}
}

const defaultGeneratedConfidence = 0.5

// scoreResult is the outcome of cross-validating one generated
// recommendation against the triggered rule set.
type scoreResult struct {
	Confidence  float64
	Notes       []string
	RuleMatches []string
	Source      string
}

// scoreAgainstRules computes the cross-validated confidence for a generated
// recommendation. Pure: same inputs, same output.
//
// Base confidence is the model's own estimate (0.5 when absent). Every
// triggered rule of the same category adds its weight, capped per rule; two
// or more rules whose directive agrees with the generated direction add a
// flat agreement bonus once. Zero coverage multiplies by the coverage
// penalty; a directive contradiction multiplies by the contradiction penalty
// and records a note. The result is clamped to [0,1].
func scoreAgainstRules(text, category string, modelConfidence *float64, triggered rules.TriggeredRuleSet, p ScoreParams) scoreResult {
	confidence := defaultGeneratedConfidence
	if modelConfidence != nil {
		confidence = clamp01(*modelConfidence)
	}

	directive := inferDirective(text, category)
	matching := triggered.ByCategory(category)
	var notes []string
	var matches []string

	agreeing := 0
	for _, t := range matching {
		matches = append(matches, t.Rule.ID)
		add := t.Rule.ConfidenceWeight
		if add > p.PerRuleCap {
			add = p.PerRuleCap
		}
		confidence += add
		if t.Rule.Directive == directive {
			agreeing++
		}
	}
	if agreeing >= 2 {
		confidence += p.AgreementBonus
	}
	if len(matching) == 0 {
		confidence *= p.CoveragePenalty
		notes = append(notes, fmt.Sprintf("no rulebook coverage for category %s", category))
	}

	for _, t := range matching {
		if rules.Opposes(directive, t.Rule.Directive) {
			confidence *= p.ContradictionPenalty
			notes = append(notes, fmt.Sprintf("contradicts rule %s (%s vs %s)", t.Rule.ID, directive, t.Rule.Directive))
			break
		}
	}

	source := SourceLLM
	if len(matches) > 0 {
		source = SourceHybrid
	}
	sort.Strings(matches)
	return scoreResult{
		Confidence:  clamp01(confidence),
		Notes:       notes,
		RuleMatches: matches,
		Source:      source,
	}
}

// tierFor maps a confidence score to its review tier.
func tierFor(confidence float64) string {
	switch {
	case confidence >= 0.7:
		return review.TierAutoApproved
	case confidence >= 0.5:
		return review.TierAsyncReview
	default:
		return review.TierSyncReview
	}
}

// Cues that flip a category's action to its hold form. Checked against the
// lowercased recommendation text.
var holdCues = []string{
	"etməyin",
	"dayandırın",
	"gözləyin",
	"təxirə salın",
	"tələsməyin",
	"hold off",
	"do not",
	"don't",
	"avoid",
	"delay",
	"postpone",
	"wait",
	"не ",
	"подождите",
	"отложите",
}

var categoryDirectives = map[string][2]string{
	"irrigation":    {"irrigate", "hold_irrigation"},
	"fertilization": {"fertilize", "hold_fertilization"},
	"pest_control":  {"treat", "hold_treatment"},
	"harvest":       {"harvest_now", "delay_harvest"},
	"soil":          {"amend_soil", "hold_amendment"},
}

// inferDirective derives the action a generated recommendation is pushing
// toward, so it can be checked against rule directives. Categories without an
// action pair (livestock, subsidy, general) are advisory and never
// contradict.
func inferDirective(text, category string) string {
	pair, ok := categoryDirectives[category]
	if !ok {
		return "advise"
	}
	lower := strings.ToLower(text)
	for _, cue := range holdCues {
		if strings.Contains(lower, cue) {
			return pair[1]
		}
	}
	return pair[0]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// priorityForWeight maps a rule confidence weight to a response priority.
func priorityForWeight(weight float64) string {
	switch {
	case weight >= 0.9:
		return "high"
	case weight >= 0.7:
		return "medium"
	default:
		return "low"
	}
}

// normalizePriority coerces provider output into the priority vocabulary.
func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "high":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}
