package bootstrap

import (
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/suqly/category-suggester/internal/config"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/storage"
)

// SetupStorage connects to Elasticsearch and ensures the training documents
// index exists.
func SetupStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (*storage.ElasticsearchStorage, error) {
	client, err := es.NewClient(es.Config{
		Addresses:  []string{cfg.Elasticsearch.URL},
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	store := storage.NewElasticsearchStorage(client, cfg.Elasticsearch.Index)

	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging elasticsearch: %w", err)
	}
	if err := store.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensuring index: %w", err)
	}

	log.Info("elasticsearch connected",
		logger.String("url", cfg.Elasticsearch.URL),
		logger.String("index", cfg.Elasticsearch.Index))

	return store, nil
}
