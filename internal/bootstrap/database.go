package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suqly/category-suggester/internal/config"
	"github.com/suqly/category-suggester/internal/database"
	"github.com/suqly/category-suggester/internal/logger"
)

// DatabaseComponents holds the relational connection and repositories.
type DatabaseComponents struct {
	DB          *sqlx.DB
	Categories  *database.CategoryRepository
	BrandModels *database.BrandModelRepository
}

// SetupDatabase connects to Postgres and builds the repositories.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*DatabaseComponents, error) {
	dbConfig := cfg.Database.Connection()

	log.Info("connecting to postgres",
		logger.String("host", dbConfig.Host),
		logger.String("port", dbConfig.Port),
		logger.String("database", dbConfig.DBName))

	db, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DatabaseComponents{
		DB:          db,
		Categories:  database.NewCategoryRepository(db),
		BrandModels: database.NewBrandModelRepository(db),
	}, nil
}
