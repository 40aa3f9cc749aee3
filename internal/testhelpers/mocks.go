// Package testhelpers provides shared in-memory fakes for the suggester's
// external collaborators.
package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suqly/category-suggester/internal/database"
	"github.com/suqly/category-suggester/internal/domain"
)

// MemoryCategorySource implements the relational category reads in memory.
type MemoryCategorySource struct {
	mu         sync.RWMutex
	Categories map[int64]domain.Category
	// FailGetAll forces GetAll to return an error, for degraded-path tests.
	FailGetAll error
}

// NewMemoryCategorySource creates an empty source.
func NewMemoryCategorySource() *MemoryCategorySource {
	return &MemoryCategorySource{Categories: make(map[int64]domain.Category)}
}

// Put stores a category row.
func (m *MemoryCategorySource) Put(c domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Categories[c.ID] = c
}

// Remove drops a category row.
func (m *MemoryCategorySource) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Categories, id)
}

// GetAll returns all rows ordered by id.
func (m *MemoryCategorySource) GetAll(_ context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailGetAll != nil {
		return nil, m.FailGetAll
	}
	out := make([]domain.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns one row or database.ErrCategoryNotFound.
func (m *MemoryCategorySource) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.Categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", database.ErrCategoryNotFound, id)
	}
	return &c, nil
}

// MemoryBrandModelSource implements the brand/model reads in memory.
type MemoryBrandModelSource struct {
	mu     sync.RWMutex
	Models map[int64][]domain.BrandModel // keyed by category id
}

// NewMemoryBrandModelSource creates an empty source.
func NewMemoryBrandModelSource() *MemoryBrandModelSource {
	return &MemoryBrandModelSource{Models: make(map[int64][]domain.BrandModel)}
}

// Put stores the rows for a category.
func (m *MemoryBrandModelSource) Put(categoryID int64, rows ...domain.BrandModel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Models[categoryID] = rows
}

// GetByCategory returns the rows for a category.
func (m *MemoryBrandModelSource) GetByCategory(_ context.Context, categoryID int64) ([]domain.BrandModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Models[categoryID], nil
}

// MemoryDocumentStore implements the full document-store surface in memory.
type MemoryDocumentStore struct {
	mu        sync.RWMutex
	Documents map[int64]domain.TrainingDocument
	// FailAll forces every read to fail, for cache fallback tests.
	FailAll error
	// Upserts counts UpsertDocument calls.
	Upserts int
}

// NewMemoryDocumentStore creates an empty store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{Documents: make(map[int64]domain.TrainingDocument)}
}

// GetDocument returns a copy of the stored document.
func (m *MemoryDocumentStore) GetDocument(_ context.Context, categoryID int64) (*domain.TrainingDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailAll != nil {
		return nil, m.FailAll
	}
	doc, ok := m.Documents[categoryID]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	return &doc, nil
}

// GetAllDocuments returns all documents ordered by category id.
func (m *MemoryDocumentStore) GetAllDocuments(_ context.Context) ([]domain.TrainingDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailAll != nil {
		return nil, m.FailAll
	}
	out := make([]domain.TrainingDocument, 0, len(m.Documents))
	for _, d := range m.Documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

// GetLeafDocuments returns leaf documents ordered by category id.
func (m *MemoryDocumentStore) GetLeafDocuments(_ context.Context) ([]domain.TrainingDocument, error) {
	docs, err := m.GetAllDocuments(context.Background())
	if err != nil {
		return nil, err
	}
	leaf := docs[:0]
	for _, d := range docs {
		if d.IsLeaf {
			leaf = append(leaf, d)
		}
	}
	return leaf, nil
}

// UpsertDocument stores the document under its category id.
func (m *MemoryDocumentStore) UpsertDocument(_ context.Context, doc *domain.TrainingDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++
	m.Documents[doc.CategoryID] = *doc
	return nil
}

// DeleteDocument removes a document; missing ids are not an error.
func (m *MemoryDocumentStore) DeleteDocument(_ context.Context, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Documents, categoryID)
	return nil
}

// AppendBrandModel appends to the models array and raises has-models.
func (m *MemoryDocumentStore) AppendBrandModel(_ context.Context, categoryID int64, entry domain.BrandModelEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Documents[categoryID]
	if !ok {
		return fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	doc.Models = append(doc.Models, entry)
	doc.HasModels = true
	m.Documents[categoryID] = doc
	return nil
}

// UpdateBrandModel replaces the entry with a matching id.
func (m *MemoryDocumentStore) UpdateBrandModel(_ context.Context, categoryID int64, entry domain.BrandModelEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Documents[categoryID]
	if !ok {
		return fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	for i := range doc.Models {
		if doc.Models[i].ID == entry.ID {
			doc.Models[i] = entry
		}
	}
	m.Documents[categoryID] = doc
	return nil
}

// RemoveBrandModel removes the entry with a matching id and recomputes the
// has-models flag.
func (m *MemoryDocumentStore) RemoveBrandModel(_ context.Context, categoryID, modelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Documents[categoryID]
	if !ok {
		return fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	kept := doc.Models[:0]
	for _, e := range doc.Models {
		if e.ID != modelID {
			kept = append(kept, e)
		}
	}
	doc.Models = kept
	doc.HasModels = len(kept) > 0
	m.Documents[categoryID] = doc
	return nil
}

// AppendExample appends a curated training example.
func (m *MemoryDocumentStore) AppendExample(_ context.Context, categoryID int64, lang domain.Language, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Documents[categoryID]
	if !ok {
		return fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	if lang == domain.LanguageKurdish {
		doc.ExamplesKu = append(doc.ExamplesKu, text)
	} else {
		doc.ExamplesAr = append(doc.ExamplesAr, text)
	}
	m.Documents[categoryID] = doc
	return nil
}

// Ping reports the forced failure, if any.
func (m *MemoryDocumentStore) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailAll
}
