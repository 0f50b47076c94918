package advisor

import (
	"agro-backend/internal/citations"
)

// TrustWeights are the component weights of the composite accuracy score.
type TrustWeights struct {
	RuleMatch float64
	Source    float64
	Expert    float64
	Temporal  float64
	Regional  float64
}

// DefaultTrustWeights mirrors the config defaults for standalone use in
// tests.
func DefaultTrustWeights() TrustWeights {
	return TrustWeights{RuleMatch: 0.35, Source: 0.2, Expert: 0.15, Temporal: 0.15, Regional: 0.15}
}

// TrustReport is the per-response accuracy breakdown.
type TrustReport struct {
	RuleMatch         float64 `json:"rule_match"`
	SourceQuality     float64 `json:"source_quality"`
	ExpertValidation  float64 `json:"expert_validation"`
	TemporalRelevance float64 `json:"temporal_relevance"`
	RegionalRelevance float64 `json:"regional_relevance"`
	Composite         float64 `json:"composite"`
}

const (
	neutralSourceQuality  = 0.5
	fallbackSourceQuality = 0.7
	neutralTemporal       = 0.5
)

// computeTrust builds the accuracy report for a finished response.
//
// Rule match is the fraction of recommendations backed by at least one rule.
// Source quality averages the citation quality of the matched rules. Expert
// validation starts at zero; it only rises once reviewed responses feed back
// in. Temporal relevance reflects whether recent farm history informed the
// response, regional relevance whether a dialect match succeeded for the
// query.
func computeTrust(recs []Recommendation, hasTemporalContext, dialectMatched bool, regionalDefault float64, w TrustWeights) TrustReport {
	report := TrustReport{
		ExpertValidation:  0,
		TemporalRelevance: neutralTemporal,
		RegionalRelevance: regionalDefault,
	}

	if len(recs) > 0 {
		matched := 0
		var qualitySum float64
		var qualityCount int
		for _, rec := range recs {
			if len(rec.RuleMatches) > 0 {
				matched++
			}
			for _, c := range rec.Citations {
				qualitySum += citations.Quality(c.ID, fallbackSourceQuality)
				qualityCount++
			}
		}
		report.RuleMatch = float64(matched) / float64(len(recs))
		if qualityCount > 0 {
			report.SourceQuality = qualitySum / float64(qualityCount)
		} else {
			report.SourceQuality = neutralSourceQuality
		}
	}

	if hasTemporalContext {
		report.TemporalRelevance = 1.0
	}
	if dialectMatched {
		report.RegionalRelevance = 1.0
	}

	report.Composite = clamp01(
		w.RuleMatch*report.RuleMatch +
			w.Source*report.SourceQuality +
			w.Expert*report.ExpertValidation +
			w.Temporal*report.TemporalRelevance +
			w.Regional*report.RegionalRelevance)
	return report
}
