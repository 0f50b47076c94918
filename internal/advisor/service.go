package advisor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agro-backend/internal/citations"
	"agro-backend/internal/dialect"
	"agro-backend/internal/intent"
	"agro-backend/internal/llm"
	"agro-backend/internal/pii"
	"agro-backend/internal/review"
	"agro-backend/internal/rules"
	"agro-backend/internal/shared/metrics"
	"agro-backend/internal/shared/telemetry"
	"agro-backend/internal/temporal"
)

// Params bundles the engine's tunable constants and identifiers.
type Params struct {
	Score             ScoreParams
	Trust             TrustWeights
	RegionalDefault   float64
	ModelVersion      string
	DefaultLanguage   string
	LLMTimeout        time.Duration
	PromptVersion     string
	LitePromptVersion string
}

// Service runs the full recommendation pipeline: sanitize, normalize,
// classify, evaluate, generate, cross-validate, review, personalize.
type Service struct {
	params     Params
	gateway    *pii.Gateway
	normalizer *dialect.Normalizer
	dialects   *dialect.Table
	matcher    *intent.Matcher
	registry   *rules.Registry
	timeline   *temporal.Manager
	standard   llm.Client
	lite       llm.Client
	selector   *ModeSelector
	reviews    *review.Service
	now        func() time.Time
}

// Deps lists the service's collaborators.
type Deps struct {
	Gateway    *pii.Gateway
	Normalizer *dialect.Normalizer
	Dialects   *dialect.Table
	Matcher    *intent.Matcher
	Registry   *rules.Registry
	Timeline   *temporal.Manager
	Standard   llm.Client
	Lite       llm.Client
	Selector   *ModeSelector
	Reviews    *review.Service
	Now        func() time.Time
}

// NewService constructs the advisor Service.
func NewService(params Params, deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if params.DefaultLanguage == "" {
		params.DefaultLanguage = "az"
	}
	if params.LLMTimeout <= 0 {
		params.LLMTimeout = 30 * time.Second
	}
	if params.PromptVersion == "" {
		params.PromptVersion = "standard_v1"
	}
	if params.LitePromptVersion == "" {
		params.LitePromptVersion = "lite_v1"
	}
	return &Service{
		params:     params,
		gateway:    deps.Gateway,
		normalizer: deps.Normalizer,
		dialects:   deps.Dialects,
		matcher:    deps.Matcher,
		registry:   deps.Registry,
		timeline:   deps.Timeline,
		standard:   deps.Standard,
		lite:       deps.Lite,
		selector:   deps.Selector,
		reviews:    deps.Reviews,
		now:        deps.Now,
	}
}

// DefaultLanguage reports the configured response language fallback.
func (s *Service) DefaultLanguage() string { return s.params.DefaultLanguage }

// Recommend runs the pipeline for one request. The request must already be
// normalized and validated.
func (s *Service) Recommend(ctx context.Context, req Request, requestID string) (Response, error) {
	start := s.now()
	metrics.IncRecommendationStarted()

	sanitized, err := s.gateway.Sanitize(ctx, req.FarmID, req.FarmerName, req.Query, requestID)
	if err != nil {
		metrics.IncRecommendationFailed()
		return Response{}, err
	}

	normalized, detection := s.normalizer.Normalize(sanitized.Query, req.Dialect)
	intentResult := s.matcher.Classify(normalized)
	category := intentResult.Intent.Category()
	seasonPhase := temporal.CurrentSeasonPhase(s.now())

	ruleCtx := s.buildRuleContext(req, category, seasonPhase)

	crop := firstCrop(req.Crops)
	var (
		wg          sync.WaitGroup
		triggered   rules.TriggeredRuleSet
		hasTemporal bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		triggered = s.registry.Evaluate(ruleCtx)
	}()
	go func() {
		defer wg.Done()
		if _, err := s.timeline.RelevantContext(ctx, sanitized.FarmToken, category, crop, 30); err == nil {
			hasTemporal = true
		}
	}()
	wg.Wait()

	mode := s.selector.Select(ctx, req.InferenceMode)
	effectiveMode := mode

	var recs []Recommendation
	var responseNotes []string
	if mode == ModeOffline {
		recs = s.offlineRecommendations(triggered, req)
	} else {
		generated, genErr := s.generate(ctx, mode, normalized, intentResult, req, seasonPhase)
		if genErr != nil {
			telemetry.Warn("advisor.generation_failed", map[string]any{
				"farm_token": sanitized.FarmToken,
				"mode":       mode,
				"error":      genErr.Error(),
			})
			metrics.IncOfflineFallback()
			effectiveMode = ModeOfflineFallback
			recs = s.offlineRecommendations(triggered, req)
		} else {
			recs = s.validateGenerated(generated, category, triggered, req)
			recs = s.fillFromRulebook(recs, triggered, req)
		}
	}

	// Expert review for anything below the auto-approve bar.
	for _, rec := range recs {
		if rec.ReviewTier == review.TierAutoApproved {
			continue
		}
		if _, err := s.reviews.Enqueue(ctx, review.EnqueueInput{
			RecommendationID:   rec.ID,
			FarmToken:          sanitized.FarmToken,
			Tier:               rec.ReviewTier,
			RecommendationText: rec.Text,
			Confidence:         rec.Confidence,
			Notes:              rec.ValidationNotes,
			RequestID:          requestID,
		}); err != nil {
			telemetry.Error("advisor.review_enqueue_failed", map[string]any{
				"farm_token": sanitized.FarmToken,
				"tier":       rec.ReviewTier,
				"error":      err.Error(),
			})
		}
	}

	if warn := s.timeline.IntervalWarning(ctx, sanitized.FarmToken, category, crop); warn != "" {
		responseNotes = append(responseNotes, warn)
	}
	if len(recs) > 0 && category != string(intent.Unknown) {
		if _, err := s.timeline.Record(ctx, sanitized.FarmToken, category, crop); err != nil {
			telemetry.Warn("advisor.timeline_record_failed", map[string]any{
				"farm_token": sanitized.FarmToken,
				"error":      err.Error(),
			})
		}
	}

	// Egress: regional vocabulary back in, then the farmer's name. Nothing
	// else stripped at ingress is ever reconstituted.
	outDialect := req.Dialect
	if outDialect == "" && detection.Matched {
		outDialect = detection.Dialect
	}
	for i := range recs {
		text := recs[i].Text
		if outDialect != "" {
			text = s.normalizer.Localize(text, outDialect)
		}
		recs[i].Text = s.gateway.Personalize(text, req.FarmerName)
	}

	dialectMatched := detection.Matched || (req.Dialect != "" && s.dialects.Known(req.Dialect))
	trust := computeTrust(recs, hasTemporal, dialectMatched, s.params.RegionalDefault, s.params.Trust)

	elapsed := s.now().Sub(start)
	metrics.IncRecommendationCompleted()
	metrics.ObservePipelineDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("advisor.completed", map[string]any{
		"farm_token":     sanitized.FarmToken,
		"request_id":     requestID,
		"intent":         string(intentResult.Intent),
		"inference_mode": effectiveMode,
		"rules_fired":    len(triggered),
		"recs":           len(recs),
		"duration_ms":    elapsed.Milliseconds(),
	})

	return Response{
		Recommendations:   recs,
		OverallConfidence: meanConfidence(recs),
		AccuracyScore:     trust.Composite,
		ValidationNotes:   responseNotes,
		Intent:            string(intentResult.Intent),
		Dialect:           detection.Dialect,
		SeasonPhase:       string(seasonPhase),
		InferenceMode:     effectiveMode,
		ModelVersion:      s.params.ModelVersion,
		RulepackVersion:   s.registry.Version(),
		FarmToken:         sanitized.FarmToken,
		ProcessingTimeMs:  elapsed.Milliseconds(),
	}, nil
}

func (s *Service) buildRuleContext(req Request, category string, phase temporal.SeasonPhase) rules.Context {
	ctx := rules.Context{
		"region":        req.Region,
		"area_hectares": req.AreaHectares,
		"season_phase":  string(phase),
		"intent":        category,
	}
	if req.FarmType != "" {
		ctx["farm_type"] = req.FarmType
	}
	if crop := firstCrop(req.Crops); crop != "" {
		ctx["crop"] = crop
	}
	setIfPresent(ctx, "soil_moisture_percent", req.SoilMoisturePercent)
	setIfPresent(ctx, "soil_ph", req.SoilPH)
	setIfPresent(ctx, "nitrogen_level", req.NitrogenLevel)
	setIfPresent(ctx, "phosphorus_level", req.PhosphorusLevel)
	setIfPresent(ctx, "potassium_level", req.PotassiumLevel)
	setIfPresent(ctx, "temperature_min", req.TemperatureMin)
	setIfPresent(ctx, "temperature_max", req.TemperatureMax)
	setIfPresent(ctx, "humidity_percent", req.HumidityPercent)
	if req.PrecipitationExpected != nil {
		ctx["precipitation_expected"] = *req.PrecipitationExpected
	}
	return ctx
}

func (s *Service) generate(ctx context.Context, mode, query string, intentResult intent.Result, req Request, phase temporal.SeasonPhase) (llm.GeneratedPayload, error) {
	client := s.standard
	promptVersion := s.params.PromptVersion
	if mode == ModeLite {
		client = s.lite
		promptVersion = s.params.LitePromptVersion
	}

	callCtx, cancel := context.WithTimeout(ctx, s.params.LLMTimeout)
	defer cancel()

	raw, err := client.Recommend(callCtx, llm.PromptInput{
		Query:              query,
		Intent:             string(intentResult.Intent),
		Language:           req.Language,
		Region:             req.Region,
		FarmType:           req.FarmType,
		Crops:              req.Crops,
		SeasonPhase:        string(phase),
		MaxRecommendations: req.MaxRecommendations,
		PromptVersion:      promptVersion,
	})
	if err != nil {
		return llm.GeneratedPayload{}, err
	}
	return llm.ParsePayload(raw)
}

// validateGenerated scores each generated item against the triggered rules.
func (s *Service) validateGenerated(payload llm.GeneratedPayload, intentCategory string, triggered rules.TriggeredRuleSet, req Request) []Recommendation {
	var out []Recommendation
	for _, item := range payload.Recommendations {
		if len(out) >= req.MaxRecommendations {
			break
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if category == "" {
			category = intentCategory
		}
		score := scoreAgainstRules(text, category, item.Confidence, triggered, s.params.Score)

		var cites []citations.Citation
		for _, ruleID := range score.RuleMatches {
			if rule, ok := s.registry.Lookup(ruleID); ok {
				if c, found := citations.Lookup(rule.CitationID); found {
					cites = appendCitation(cites, c)
				}
			}
		}

		out = append(out, Recommendation{
			ID:              uuid.NewString(),
			Text:            text,
			Category:        category,
			Priority:        normalizePriority(item.Priority),
			Source:          score.Source,
			Confidence:      score.Confidence,
			Citations:       cites,
			RuleMatches:     score.RuleMatches,
			ValidationNotes: score.Notes,
			ReviewTier:      tierFor(score.Confidence),
		})
	}
	return out
}

// fillFromRulebook tops the response up with rules the generated set did not
// cover, in weight order.
func (s *Service) fillFromRulebook(recs []Recommendation, triggered rules.TriggeredRuleSet, req Request) []Recommendation {
	covered := make(map[string]bool)
	for _, rec := range recs {
		for _, id := range rec.RuleMatches {
			covered[id] = true
		}
	}
	for _, t := range triggered {
		if len(recs) >= req.MaxRecommendations {
			break
		}
		if covered[t.Rule.ID] {
			continue
		}
		covered[t.Rule.ID] = true
		recs = append(recs, s.rulebookRecommendation(t.Rule, req.Language))
	}
	return recs
}

// offlineRecommendations builds the deterministic response: the triggered
// rules themselves, weight order, rule weight as confidence.
func (s *Service) offlineRecommendations(triggered rules.TriggeredRuleSet, req Request) []Recommendation {
	var out []Recommendation
	for _, t := range triggered {
		if len(out) >= req.MaxRecommendations {
			break
		}
		out = append(out, s.rulebookRecommendation(t.Rule, req.Language))
	}
	return out
}

func (s *Service) rulebookRecommendation(rule rules.Rule, language string) Recommendation {
	var cites []citations.Citation
	if c, ok := citations.Lookup(rule.CitationID); ok {
		cites = append(cites, c)
	}
	return Recommendation{
		ID:          uuid.NewString(),
		Text:        rule.Template(language),
		Category:    rule.Category,
		Priority:    priorityForWeight(rule.ConfidenceWeight),
		Source:      SourceRulebook,
		Confidence:  rule.ConfidenceWeight,
		Citations:   cites,
		RuleMatches: []string{rule.ID},
		ReviewTier:  tierFor(rule.ConfidenceWeight),
	}
}

func appendCitation(cites []citations.Citation, c citations.Citation) []citations.Citation {
	for _, existing := range cites {
		if existing.ID == c.ID {
			return cites
		}
	}
	return append(cites, c)
}

func setIfPresent(ctx rules.Context, field string, value *float64) {
	if value != nil {
		ctx[field] = *value
	}
}

func firstCrop(crops []string) string {
	for _, c := range crops {
		if trimmed := strings.ToLower(strings.TrimSpace(c)); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func meanConfidence(recs []Recommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		sum += r.Confidence
	}
	return sum / float64(len(recs))
}
