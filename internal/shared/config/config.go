package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string

	// Rulepack / dialect table source.
	ConfigStoreType string // "local" or "s3"
	LocalConfigDir  string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string

	// Generative capability.
	LLMProvider     string
	LLMModel        string
	LLMBaseURL      string
	LiteModel       string
	LiteBaseURL     string
	LLMTimeout      time.Duration
	ModelVersion    string
	DefaultLanguage string

	// PII gateway.
	PIISalt string

	// Expert review.
	ReviewQueueURL string
	ReviewTimeout  time.Duration

	// Tunable scoring and trust constants. Heuristic defaults from the
	// source rulebook evaluation; revisit against real review data.
	PerRuleCap           float64
	AgreementBonus       float64
	CoveragePenalty      float64
	ContradictionPenalty float64
	RegionalDefault      float64
	TrustWeightRuleMatch float64
	TrustWeightSource    float64
	TrustWeightExpert    float64
	TrustWeightTemporal  float64
	TrustWeightRegional  float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		DatabaseURL:     dbURL,

		ConfigStoreType: normalizeStoreType(getEnv("CONFIG_STORE", "local")),
		LocalConfigDir:  getEnv("LOCAL_CONFIG_DIR", "./configs"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),

		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LiteModel:       getEnv("LITE_MODEL", "qwen2.5:3b"),
		LiteBaseURL:     getEnv("LITE_BASE_URL", "http://localhost:11434/v1"),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		ModelVersion:    getEnv("MODEL_VERSION", "agro-advisor:v1"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "az"),

		PIISalt: getEnv("PII_SALT", "dev-only-salt"),

		ReviewQueueURL: getEnv("REVIEW_QUEUE_URL", ""),
		ReviewTimeout:  getEnvDuration("REVIEW_TIMEOUT", 24*time.Hour),

		PerRuleCap:           getEnvFloat("SCORE_PER_RULE_CAP", 0.4),
		AgreementBonus:       getEnvFloat("SCORE_AGREEMENT_BONUS", 0.1),
		CoveragePenalty:      getEnvFloat("SCORE_COVERAGE_PENALTY", 0.7),
		ContradictionPenalty: getEnvFloat("SCORE_CONTRADICTION_PENALTY", 0.5),
		RegionalDefault:      getEnvFloat("TRUST_REGIONAL_DEFAULT", 0.6),
		TrustWeightRuleMatch: getEnvFloat("TRUST_WEIGHT_RULE_MATCH", 0.35),
		TrustWeightSource:    getEnvFloat("TRUST_WEIGHT_SOURCE", 0.2),
		TrustWeightExpert:    getEnvFloat("TRUST_WEIGHT_EXPERT", 0.15),
		TrustWeightTemporal:  getEnvFloat("TRUST_WEIGHT_TEMPORAL", 0.15),
		TrustWeightRegional:  getEnvFloat("TRUST_WEIGHT_REGIONAL", 0.15),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
