package advisor

import (
	"strings"

	"agro-backend/internal/citations"
)

// Inference modes a caller may request. Auto lets the engine pick based on
// connectivity.
const (
	ModeStandard = "standard"
	ModeLite     = "lite"
	ModeOffline  = "offline"
	ModeAuto     = "auto"

	// Reported when a generative call failed and the engine recovered with
	// the deterministic path mid-request.
	ModeOfflineFallback = "offline-fallback"
)

// Recommendation sources.
const (
	SourceLLM      = "llm"
	SourceRulebook = "rulebook"
	SourceHybrid   = "hybrid"
)

const (
	defaultMaxRecommendations = 5
	maxRecommendationsCap     = 20
)

// Request is the inbound recommendation request. FarmID and FarmerName are
// the only direct identifiers; both stay inside the PII gateway boundary.
type Request struct {
	FarmID                string   `json:"farm_id"`
	FarmerName            string   `json:"farmer_name,omitempty"`
	Region                string   `json:"region"`
	FarmType              string   `json:"farm_type"`
	Crops                 []string `json:"crops"`
	AreaHectares          float64  `json:"area_hectares"`
	SoilMoisturePercent   *float64 `json:"soil_moisture_percent,omitempty"`
	SoilPH                *float64 `json:"soil_ph,omitempty"`
	NitrogenLevel         *float64 `json:"nitrogen_level,omitempty"`
	PhosphorusLevel       *float64 `json:"phosphorus_level,omitempty"`
	PotassiumLevel        *float64 `json:"potassium_level,omitempty"`
	TemperatureMin        *float64 `json:"temperature_min,omitempty"`
	TemperatureMax        *float64 `json:"temperature_max,omitempty"`
	PrecipitationExpected *bool    `json:"precipitation_expected,omitempty"`
	HumidityPercent       *float64 `json:"humidity_percent,omitempty"`
	Query                 string   `json:"query"`
	Language              string   `json:"language,omitempty"`
	Dialect               string   `json:"dialect,omitempty"`
	MaxRecommendations    int      `json:"max_recommendations,omitempty"`
	InferenceMode         string   `json:"inference_mode,omitempty"`
}

var validFarmTypes = map[string]bool{
	"crop":      true,
	"livestock": true,
	"mixed":     true,
	"orchard":   true,
}

var validLanguages = map[string]bool{
	"az": true,
	"en": true,
	"ru": true,
}

var validModes = map[string]bool{
	ModeStandard: true,
	ModeLite:     true,
	ModeOffline:  true,
	ModeAuto:     true,
}

// Normalize applies defaults and canonical casing in place.
func (r *Request) Normalize(defaultLanguage string) {
	r.FarmID = strings.TrimSpace(r.FarmID)
	r.Region = strings.ToLower(strings.TrimSpace(r.Region))
	r.FarmType = strings.ToLower(strings.TrimSpace(r.FarmType))
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	r.Dialect = strings.ToLower(strings.TrimSpace(r.Dialect))
	r.InferenceMode = strings.ToLower(strings.TrimSpace(r.InferenceMode))
	if r.Language == "" {
		r.Language = defaultLanguage
	}
	if r.InferenceMode == "" {
		r.InferenceMode = ModeAuto
	}
	if r.MaxRecommendations == 0 {
		r.MaxRecommendations = defaultMaxRecommendations
	}
}

// Validate checks the normalized request and returns a ValidationError naming
// the first offending field.
func (r *Request) Validate() error {
	if r.FarmID == "" {
		return &ValidationError{Field: "farm_id", Issue: "is required"}
	}
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Issue: "is required"}
	}
	if r.Region == "" {
		return &ValidationError{Field: "region", Issue: "is required"}
	}
	if r.FarmType != "" && !validFarmTypes[r.FarmType] {
		return &ValidationError{Field: "farm_type", Issue: "must be one of crop, livestock, mixed, orchard"}
	}
	if r.AreaHectares <= 0 {
		return &ValidationError{Field: "area_hectares", Issue: "must be greater than zero"}
	}
	if r.MaxRecommendations < 1 || r.MaxRecommendations > maxRecommendationsCap {
		return &ValidationError{Field: "max_recommendations", Issue: "must be between 1 and 20"}
	}
	if !validLanguages[r.Language] {
		return &ValidationError{Field: "language", Issue: "must be one of az, en, ru"}
	}
	if !validModes[r.InferenceMode] {
		return &ValidationError{Field: "inference_mode", Issue: "must be one of standard, lite, offline, auto"}
	}
	if r.SoilMoisturePercent != nil && (*r.SoilMoisturePercent < 0 || *r.SoilMoisturePercent > 100) {
		return &ValidationError{Field: "soil_moisture_percent", Issue: "must be between 0 and 100"}
	}
	if r.SoilPH != nil && (*r.SoilPH < 0 || *r.SoilPH > 14) {
		return &ValidationError{Field: "soil_ph", Issue: "must be between 0 and 14"}
	}
	if r.HumidityPercent != nil && (*r.HumidityPercent < 0 || *r.HumidityPercent > 100) {
		return &ValidationError{Field: "humidity_percent", Issue: "must be between 0 and 100"}
	}
	return nil
}

// Recommendation is one validated, scored recommendation in the response.
type Recommendation struct {
	ID              string               `json:"id"`
	Text            string               `json:"text"`
	Category        string               `json:"category"`
	Priority        string               `json:"priority"`
	Source          string               `json:"source"`
	Confidence      float64              `json:"confidence"`
	Citations       []citations.Citation `json:"citations"`
	RuleMatches     []string             `json:"rule_matches"`
	ValidationNotes []string             `json:"validation_notes"`
	ReviewTier      string               `json:"review_tier"`
}

// Response is the full engine output for one request.
type Response struct {
	Recommendations   []Recommendation `json:"recommendations"`
	OverallConfidence float64          `json:"overall_confidence"`
	AccuracyScore     float64          `json:"accuracy_score"`
	ValidationNotes   []string         `json:"validation_notes"`
	Intent            string           `json:"intent"`
	Dialect           string           `json:"dialect"`
	SeasonPhase       string           `json:"season_phase"`
	InferenceMode     string           `json:"inference_mode"`
	ModelVersion      string           `json:"model_version"`
	RulepackVersion   string           `json:"rulepack_version"`
	FarmToken         string           `json:"farm_token"`
	ProcessingTimeMs  int64            `json:"processing_time_ms"`
}
