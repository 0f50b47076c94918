package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"agro-backend/internal/advisor"
	"agro-backend/internal/dialect"
	"agro-backend/internal/intent"
	"agro-backend/internal/llm"
	openai "agro-backend/internal/llm/openai"
	"agro-backend/internal/pii"
	"agro-backend/internal/review"
	"agro-backend/internal/rules"
	"agro-backend/internal/shared/config"
	"agro-backend/internal/shared/server"
	"agro-backend/internal/shared/storage/db"
	"agro-backend/internal/shared/storage/object"
	localstore "agro-backend/internal/shared/storage/object/local"
	s3store "agro-backend/internal/shared/storage/object/s3"
	"agro-backend/internal/temporal"
)

const (
	rulepackKey     = "rulepack.json"
	dialectTableKey = "dialects.json"
)

// App holds shared dependencies for the API server and the review worker.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	ConfigStore object.ConfigStore
	Registry    *rules.Registry
	Dialects    *dialect.Table
	Gateway     *pii.Gateway
	Timeline    *temporal.Manager
	Reviews     *review.Service
	Advisor     *advisor.Service
	Handler     *advisor.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := loadRulepack(ctx, store)
	dialects := loadDialectTable(ctx, store)

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	standard, lite, err := buildLLMClients(cfg)
	if err != nil {
		return nil, err
	}

	var auditRepo pii.AuditRepo
	var timelineRepo temporal.Repo
	var reviewRepo review.Repo
	if sqlDB != nil {
		auditRepo = &pii.PGAuditRepo{DB: sqlDB}
		timelineRepo = &temporal.PGRepo{DB: sqlDB}
		reviewRepo = &review.PGRepo{DB: sqlDB}
	} else {
		auditRepo = pii.NewMemoryAuditRepo()
		timelineRepo = temporal.NewMemoryRepo()
		reviewRepo = review.NewMemoryRepo()
	}

	gateway := pii.NewGateway(cfg.PIISalt, auditRepo)
	timeline := temporal.NewManager(timelineRepo, nil)
	reviews := review.NewService(reviewRepo, queueClient, nil)

	advisorSvc := advisor.NewService(advisor.Params{
		Score: advisor.ScoreParams{
			PerRuleCap:           cfg.PerRuleCap,
			AgreementBonus:       cfg.AgreementBonus,
			CoveragePenalty:      cfg.CoveragePenalty,
			ContradictionPenalty: cfg.ContradictionPenalty,
		},
		Trust: advisor.TrustWeights{
			RuleMatch: cfg.TrustWeightRuleMatch,
			Source:    cfg.TrustWeightSource,
			Expert:    cfg.TrustWeightExpert,
			Temporal:  cfg.TrustWeightTemporal,
			Regional:  cfg.TrustWeightRegional,
		},
		RegionalDefault: cfg.RegionalDefault,
		ModelVersion:    cfg.ModelVersion,
		DefaultLanguage: cfg.DefaultLanguage,
		LLMTimeout:      cfg.LLMTimeout,
	}, advisor.Deps{
		Gateway:    gateway,
		Normalizer: dialect.NewNormalizer(dialects),
		Dialects:   dialects,
		Matcher:    intent.NewMatcher(),
		Registry:   registry,
		Timeline:   timeline,
		Standard:   standard,
		Lite:       lite,
		Selector:   advisor.NewModeSelector(advisor.NewHTTPProbe(cfg.LLMBaseURL)),
		Reviews:    reviews,
	})

	handler := advisor.NewHandler(advisorSvc, reviews, timeline)

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		ConfigStore: store,
		Registry:    registry,
		Dialects:    dialects,
		Gateway:     gateway,
		Timeline:    timeline,
		Reviews:     reviews,
		Advisor:     advisorSvc,
		Handler:     handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Advisor: handler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ConfigStore, error) {
	switch cfg.ConfigStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("CONFIG_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalConfigDir), nil
	}
}

// loadRulepack fetches the rulepack from the config store; the embedded pack
// is the fallback so the engine always starts with a valid rulebook.
func loadRulepack(ctx context.Context, store object.ConfigStore) *rules.Registry {
	data, err := store.Fetch(ctx, rulepackKey)
	if err != nil {
		log.Printf("bootstrap: rulepack not found in config store, using embedded: %v", err)
		return rules.DefaultRulepack()
	}
	registry, err := rules.ParseRulepack(data)
	if err != nil {
		log.Printf("bootstrap: stored rulepack invalid, using embedded: %v", err)
		return rules.DefaultRulepack()
	}
	log.Printf("bootstrap: loaded rulepack %s (%d rules)", registry.Version(), registry.Len())
	return registry
}

func loadDialectTable(ctx context.Context, store object.ConfigStore) *dialect.Table {
	data, err := store.Fetch(ctx, dialectTableKey)
	if err != nil {
		log.Printf("bootstrap: dialect table not found in config store, using embedded: %v", err)
		return dialect.DefaultTable()
	}
	table, err := dialect.ParseTable(data)
	if err != nil {
		log.Printf("bootstrap: stored dialect table invalid, using embedded: %v", err)
		return dialect.DefaultTable()
	}
	return table
}

func buildQueue(ctx context.Context, cfg config.Config) (review.QueueClient, error) {
	if strings.TrimSpace(cfg.ReviewQueueURL) == "" {
		log.Printf("bootstrap: REVIEW_QUEUE_URL empty; using in-memory review queue")
		return review.NewMemoryQueueClient(), nil
	}
	return review.NewSQSQueueClient(ctx, cfg.ReviewQueueURL, cfg.AWSRegion)
}

func buildLLMClients(cfg config.Config) (llm.Client, llm.Client, error) {
	if cfg.LLMProvider != "openai" {
		log.Printf("bootstrap: provider %q has no client; generative calls will fall back offline", cfg.LLMProvider)
		return llm.PlaceholderClient{}, llm.PlaceholderClient{}, nil
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		log.Printf("bootstrap: OPENAI_API_KEY empty; generative calls will fall back offline")
		return llm.PlaceholderClient{}, llm.PlaceholderClient{}, nil
	}

	standard, err := openai.NewClient(openai.Options{
		APIKey:  apiKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.LLMBaseURL,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	lite, err := openai.NewClient(openai.Options{
		APIKey:  apiKey,
		Model:   cfg.LiteModel,
		BaseURL: cfg.LiteBaseURL,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return standard, lite, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
