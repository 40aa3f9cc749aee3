package bootstrap

import (
	"github.com/suqly/category-suggester/internal/api"
	"github.com/suqly/category-suggester/internal/classifier"
	"github.com/suqly/category-suggester/internal/config"
	"github.com/suqly/category-suggester/internal/intent"
	"github.com/suqly/category-suggester/internal/listener"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/matcher"
	"github.com/suqly/category-suggester/internal/prediction"
	"github.com/suqly/category-suggester/internal/storage"
	"github.com/suqly/category-suggester/internal/syncer"
	"github.com/suqly/category-suggester/internal/telemetry"
	"github.com/suqly/category-suggester/internal/textnorm"
)

// Components holds the fully wired service.
type Components struct {
	Classifier *classifier.Service
	Predictor  *prediction.Service
	Syncer     *syncer.Syncer
	Listener   *listener.Listener
	Server     *api.Server
	Telemetry  *telemetry.Provider
}

// Build wires every component from configuration and the backing stores.
func Build(
	cfg *config.Config,
	db *DatabaseComponents,
	store *storage.ElasticsearchStorage,
	log logger.Logger,
) *Components {
	tel := telemetry.NewProvider()

	prefixes := cfg.Classification.PrefixesByLanguage()
	if prefixes == nil {
		prefixes = textnorm.DefaultPrefixes()
	}
	normalizer := textnorm.NewNormalizer(prefixes)

	keywords := cfg.Classification.PublishKeywordsByLanguage()
	if keywords == nil {
		keywords = intent.DefaultPublishKeywords()
	}

	predictor := prediction.NewService(normalizer, log)

	classify := classifier.NewService(
		cfg.Classification.Orchestrator(),
		store,
		matcher.NewSubstringMatcher(normalizer, log),
		predictor,
		intent.NewDetector(keywords, log),
		tel,
		log,
	)

	sync := syncer.New(db.Categories, db.BrandModels, store, log)

	listen := listener.New(
		cfg.Listener.Runtime(),
		listener.PQConnect(cfg.Database.Connection().DSN(), log),
		sync,
		tel,
		log,
	)

	handler := api.NewHandler(classify, sync, predictor, store, db.DB, tel, log)
	server := api.NewServer(api.ServerConfig{
		Port:      cfg.Service.Port,
		Debug:     cfg.Service.Debug,
		RateLimit: cfg.Service.RateLimit,
		RateBurst: cfg.Service.RateBurst,
	}, handler, tel, log)

	return &Components{
		Classifier: classify,
		Predictor:  predictor,
		Syncer:     sync,
		Listener:   listen,
		Server:     server,
		Telemetry:  tel,
	}
}
