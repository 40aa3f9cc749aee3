// Package storage implements the training-document store on top of
// Elasticsearch. Documents are keyed by category id so every operation is
// an id-addressed get, upsert, delete, or scripted array mutation.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/suqly/category-suggester/internal/domain"
)

// DefaultIndex is the index holding the training documents.
const DefaultIndex = "training_documents"

// maxDocuments bounds get-all queries. The taxonomy is a few thousand
// categories at most.
const maxDocuments = 10000

// ElasticsearchStorage implements document store operations for the
// suggester.
type ElasticsearchStorage struct {
	client *es.Client
	index  string
}

// NewElasticsearchStorage creates a new Elasticsearch storage instance.
// An empty index name falls back to DefaultIndex.
func NewElasticsearchStorage(client *es.Client, index string) *ElasticsearchStorage {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchStorage{client: client, index: index}
}

// EnsureIndex creates the training document index with its mapping if it
// does not exist yet.
func (s *ElasticsearchStorage) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	createRes, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader([]byte(trainingDocumentsMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", s.index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("error creating index %s: %s", s.index, createRes.String())
	}
	return nil
}

// GetDocument returns the training document for a category id, or
// domain.ErrDocumentNotFound if none exists.
func (s *ElasticsearchStorage) GetDocument(ctx context.Context, categoryID int64) (*domain.TrainingDocument, error) {
	res, err := s.client.Get(
		s.index,
		docID(categoryID),
		s.client.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get document %d: %w", categoryID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	if res.IsError() {
		return nil, fmt.Errorf("error getting document %d: %s", categoryID, res.String())
	}

	var got struct {
		Source domain.TrainingDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		return nil, fmt.Errorf("error decoding document %d: %w", categoryID, err)
	}
	return &got.Source, nil
}

// GetAllDocuments returns every training document ordered by category id.
func (s *ElasticsearchStorage) GetAllDocuments(ctx context.Context) ([]domain.TrainingDocument, error) {
	return s.search(ctx, map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"size":  maxDocuments,
		"sort":  []map[string]any{{"category_id": map[string]any{"order": "asc"}}},
	})
}

// GetLeafDocuments returns the training documents of leaf categories only.
func (s *ElasticsearchStorage) GetLeafDocuments(ctx context.Context) ([]domain.TrainingDocument, error) {
	return s.search(ctx, map[string]any{
		"query": map[string]any{"term": map[string]any{"is_leaf": true}},
		"size":  maxDocuments,
		"sort":  []map[string]any{{"category_id": map[string]any{"order": "asc"}}},
	})
}

// UpsertDocument writes the document under its category id. The category id
// field always matches the document id, so replacement preserves identity.
func (s *ElasticsearchStorage) UpsertDocument(ctx context.Context, doc *domain.TrainingDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %d: %w", doc.CategoryID, err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(docID(doc.CategoryID)),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document %d: %w", doc.CategoryID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error upserting document %d: %s", doc.CategoryID, res.String())
	}
	return nil
}

// DeleteDocument removes the document for a category id. Deleting a missing
// document is not an error.
func (s *ElasticsearchStorage) DeleteDocument(ctx context.Context, categoryID int64) error {
	res, err := s.client.Delete(
		s.index,
		docID(categoryID),
		s.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete document %d: %w", categoryID, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error deleting document %d: %s", categoryID, res.String())
	}
	return nil
}

// AppendBrandModel appends an entry to the document's models array and
// raises the has-models flag.
func (s *ElasticsearchStorage) AppendBrandModel(ctx context.Context, categoryID int64, entry domain.BrandModelEntry) error {
	script := map[string]any{
		"script": map[string]any{
			"lang":   "painless",
			"source": appendModelScript,
			"params": map[string]any{"model": entry},
		},
	}
	return s.update(ctx, categoryID, script)
}

// UpdateBrandModel replaces the entry with a matching id in the document's
// models array. Entries with no matching id are left untouched.
func (s *ElasticsearchStorage) UpdateBrandModel(ctx context.Context, categoryID int64, entry domain.BrandModelEntry) error {
	script := map[string]any{
		"script": map[string]any{
			"lang":   "painless",
			"source": updateModelScript,
			"params": map[string]any{"model": entry, "model_id": entry.ID},
		},
	}
	return s.update(ctx, categoryID, script)
}

// RemoveBrandModel removes the entry with a matching id from the document's
// models array and recomputes the has-models flag from the remaining
// length.
func (s *ElasticsearchStorage) RemoveBrandModel(ctx context.Context, categoryID, modelID int64) error {
	script := map[string]any{
		"script": map[string]any{
			"lang":   "painless",
			"source": removeModelScript,
			"params": map[string]any{"model_id": modelID},
		},
	}
	return s.update(ctx, categoryID, script)
}

// AppendExample appends an operator-curated training example to the
// document's example list for the given language.
func (s *ElasticsearchStorage) AppendExample(ctx context.Context, categoryID int64, lang domain.Language, text string) error {
	field := "examples_ar"
	if lang == domain.LanguageKurdish {
		field = "examples_ku"
	}
	script := map[string]any{
		"script": map[string]any{
			"lang":   "painless",
			"source": fmt.Sprintf(appendExampleScript, field, field, field),
			"params": map[string]any{"example": text},
		},
	}
	return s.update(ctx, categoryID, script)
}

// Ping verifies the cluster is reachable.
func (s *ElasticsearchStorage) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.String())
	}
	return nil
}

func (s *ElasticsearchStorage) search(ctx context.Context, query map[string]any) ([]domain.TrainingDocument, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source domain.TrainingDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}

	docs := make([]domain.TrainingDocument, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

func (s *ElasticsearchStorage) update(ctx context.Context, categoryID int64, update map[string]any) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update for %d: %w", categoryID, err)
	}

	res, err := s.client.Update(
		s.index,
		docID(categoryID),
		bytes.NewReader(body),
		s.client.Update.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to update document %d: %w", categoryID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: category %d", domain.ErrDocumentNotFound, categoryID)
	}
	if res.IsError() {
		return fmt.Errorf("error updating document %d: %s", categoryID, res.String())
	}
	return nil
}

func docID(categoryID int64) string {
	return strconv.FormatInt(categoryID, 10)
}
