// Package syncer keeps the denormalized training documents in step with the
// relational taxonomy, via full resyncs and single-row change application.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/suqly/category-suggester/internal/database"
	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
)

// CategorySource reads taxonomy rows from the relational store.
type CategorySource interface {
	GetAll(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

// BrandModelSource reads brand/model rows from the relational store.
type BrandModelSource interface {
	GetByCategory(ctx context.Context, categoryID int64) ([]domain.BrandModel, error)
}

// DocumentStore is the document-store surface the syncer writes through.
type DocumentStore interface {
	GetDocument(ctx context.Context, categoryID int64) (*domain.TrainingDocument, error)
	UpsertDocument(ctx context.Context, doc *domain.TrainingDocument) error
	DeleteDocument(ctx context.Context, categoryID int64) error
	AppendBrandModel(ctx context.Context, categoryID int64, entry domain.BrandModelEntry) error
	UpdateBrandModel(ctx context.Context, categoryID int64, entry domain.BrandModelEntry) error
	RemoveBrandModel(ctx context.Context, categoryID, modelID int64) error
}

// Report summarizes a full sync run.
type Report struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Syncer builds and maintains training documents.
type Syncer struct {
	categories  CategorySource
	brandModels BrandModelSource
	store       DocumentStore
	logger      logger.Logger
}

// New creates a Syncer.
func New(
	categories CategorySource,
	brandModels BrandModelSource,
	store DocumentStore,
	log logger.Logger,
) *Syncer {
	return &Syncer{
		categories:  categories,
		brandModels: brandModels,
		store:       store,
		logger:      log,
	}
}

// FullSync rebuilds the training document of every category. Failures are
// isolated per category: each is counted and logged without aborting the
// rest. The run is a hard failure only when every single category failed.
// Re-running with unchanged rows produces identical documents, and curated
// example lists are always carried over.
func (s *Syncer) FullSync(ctx context.Context) (Report, error) {
	rows, err := s.categories.GetAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read categories: %w", err)
	}

	var report Report
	for i := range rows {
		if err := s.syncCategory(ctx, &rows[i]); err != nil {
			report.Failed++
			s.logger.Error("category sync failed",
				logger.Int64("category_id", rows[i].ID),
				logger.Error(err),
			)
			continue
		}
		report.Synced++
	}

	if report.Synced == 0 && report.Failed > 0 {
		return report, fmt.Errorf("full sync failed for all %d categories", report.Failed)
	}
	if report.Failed > 0 {
		s.logger.Warn("full sync completed with failures",
			logger.Int("synced", report.Synced),
			logger.Int("failed", report.Failed),
		)
	} else {
		s.logger.Info("full sync completed", logger.Int("synced", report.Synced))
	}
	return report, nil
}

// ApplyCategoryChange applies one category change notification. Inserts and
// updates re-read the row and rebuild the single document; deletes remove
// the document outright. A notification for a row no longer present in the
// relational store is logged and dropped.
func (s *Syncer) ApplyCategoryChange(ctx context.Context, change domain.CategoryChange) error {
	switch change.Operation {
	case domain.OperationInsert, domain.OperationUpdate:
		row, err := s.categories.GetByID(ctx, change.CategoryID)
		if errors.Is(err, database.ErrCategoryNotFound) {
			// A stale event can outlive its row, e.g. an INSERT followed by
			// a fast delete.
			s.logger.Warn("change notification for missing category, dropping",
				logger.Int64("category_id", change.CategoryID),
				logger.String("operation", change.Operation),
			)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to re-read category %d: %w", change.CategoryID, err)
		}
		return s.syncCategory(ctx, row)

	case domain.OperationDelete:
		if err := s.store.DeleteDocument(ctx, change.CategoryID); err != nil {
			return fmt.Errorf("failed to delete document %d: %w", change.CategoryID, err)
		}
		s.logger.Info("training document deleted", logger.Int64("category_id", change.CategoryID))
		return nil

	default:
		s.logger.Warn("unknown category change operation, ignoring",
			logger.String("operation", change.Operation),
			logger.Int64("category_id", change.CategoryID),
		)
		return nil
	}
}

// ApplyBrandModelChange applies one brand/model change notification by
// mutating the owning document's models array directly, without a full
// document rebuild.
func (s *Syncer) ApplyBrandModelChange(ctx context.Context, change domain.BrandModelChange) error {
	switch change.Operation {
	case domain.OperationInsert:
		if err := s.store.AppendBrandModel(ctx, change.CategoryID, change.Entry()); err != nil {
			return fmt.Errorf("failed to append brand model %d: %w", change.ID, err)
		}
	case domain.OperationUpdate:
		if err := s.store.UpdateBrandModel(ctx, change.CategoryID, change.Entry()); err != nil {
			return fmt.Errorf("failed to update brand model %d: %w", change.ID, err)
		}
	case domain.OperationDelete:
		if err := s.store.RemoveBrandModel(ctx, change.CategoryID, change.ID); err != nil {
			return fmt.Errorf("failed to remove brand model %d: %w", change.ID, err)
		}
	default:
		s.logger.Warn("unknown brand model change operation, ignoring",
			logger.String("operation", change.Operation),
			logger.Int64("brand_model_id", change.ID),
		)
		return nil
	}

	s.logger.Debug("brand model change applied",
		logger.String("operation", change.Operation),
		logger.Int64("category_id", change.CategoryID),
		logger.Int64("brand_model_id", change.ID),
	)
	return nil
}

// syncCategory builds and upserts the training document for one row,
// carrying over any curated example lists from the existing document.
func (s *Syncer) syncCategory(ctx context.Context, row *domain.Category) error {
	doc := domain.TrainingDocument{
		CategoryID: row.ID,
		NameAr:     row.NameAr,
		NameKu:     row.NameKu,
		URLPathAr:  row.URLPathAr,
		URLPathKu:  row.URLPathKu,
		IsLeaf:     row.IsLeaf,
		Models:     []domain.BrandModelEntry{},
		ExamplesAr: []string{},
		ExamplesKu: []string{},
	}

	existing, err := s.store.GetDocument(ctx, row.ID)
	if err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		return fmt.Errorf("failed to read existing document %d: %w", row.ID, err)
	}
	if existing != nil {
		// The example lists are the one piece of state not derivable from
		// the relational source. Carry them over verbatim.
		if len(existing.ExamplesAr) > 0 {
			doc.ExamplesAr = existing.ExamplesAr
		}
		if len(existing.ExamplesKu) > 0 {
			doc.ExamplesKu = existing.ExamplesKu
		}
	}

	if row.IsLeaf {
		models, err := s.brandModels.GetByCategory(ctx, row.ID)
		if err != nil {
			return fmt.Errorf("failed to read brand models for %d: %w", row.ID, err)
		}
		doc.Models = make([]domain.BrandModelEntry, 0, len(models))
		for _, m := range models {
			doc.Models = append(doc.Models, domain.BrandModelEntry{
				ID:        m.ID,
				NameEn:    m.NameEn,
				NameAr:    m.NameAr,
				NameKu:    m.NameKu,
				IsVariant: m.IsVariant,
			})
		}
		doc.HasModels = len(doc.Models) > 0
	}

	if err := s.store.UpsertDocument(ctx, &doc); err != nil {
		return fmt.Errorf("failed to upsert document %d: %w", row.ID, err)
	}
	return nil
}
