package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suqly/category-suggester/internal/domain"
)

// BrandModelRepository reads brand/model rows from the relational store.
type BrandModelRepository struct {
	db *sqlx.DB
}

// NewBrandModelRepository creates a new brand/model repository.
func NewBrandModelRepository(db *sqlx.DB) *BrandModelRepository {
	return &BrandModelRepository{db: db}
}

// GetByCategory returns the brand/model rows belonging to a category,
// ordered by id. Non-leaf categories simply have no rows.
func (r *BrandModelRepository) GetByCategory(ctx context.Context, categoryID int64) ([]domain.BrandModel, error) {
	query := `
		SELECT id, category_id, name_en, name_ar, name_ku, is_variant
		FROM brand_models
		WHERE category_id = $1
		ORDER BY id
	`

	var models []domain.BrandModel
	if err := r.db.SelectContext(ctx, &models, query, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list brand models for category %d: %w", categoryID, err)
	}
	return models, nil
}
