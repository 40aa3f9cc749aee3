// Package classifier coordinates a single classification request: intent
// detection, document fetching with cache fallback, both matching strategies,
// merging, and navigation URL building.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/matcher"
	"github.com/suqly/category-suggester/internal/telemetry"
)

const (
	// MaxSuggestions caps the merged result list.
	MaxSuggestions = 3

	// DefaultCacheTTL bounds how stale a fallback snapshot may be.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultMaxTextLength rejects oversized inputs before any processing.
	DefaultMaxTextLength = 500
)

// DocumentFetcher supplies the full training document set.
type DocumentFetcher interface {
	GetAllDocuments(ctx context.Context) ([]domain.TrainingDocument, error)
}

// SubstringMatcher finds at most one exact-text match in the document set.
type SubstringMatcher interface {
	FindMatches(input string, documents []domain.TrainingDocument, lang domain.Language) []matcher.Match
}

// Predictor scores every known category for an input text.
type Predictor interface {
	ScoreAll(text string, lang domain.Language) ([]domain.Score, error)
	Ready(lang domain.Language) bool
}

// IntentDetector decides between browse and publish intent.
type IntentDetector interface {
	Detect(input string, lang domain.Language) domain.Intent
}

// Config carries the orchestrator's tunables.
type Config struct {
	BaseURL       string
	CacheTTL      time.Duration
	MaxTextLength int
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.MaxTextLength <= 0 {
		c.MaxTextLength = DefaultMaxTextLength
	}
}

// Service is the per-request classification orchestrator. Safe for concurrent
// use; its only mutable state is the document snapshot cache.
type Service struct {
	cfg       Config
	store     DocumentFetcher
	matcher   SubstringMatcher
	predictor Predictor
	intents   IntentDetector
	cache     *documentCache
	telemetry *telemetry.Provider
	logger    logger.Logger
	now       func() time.Time
}

// NewService creates a classification orchestrator.
func NewService(
	cfg Config,
	store DocumentFetcher,
	substr SubstringMatcher,
	predictor Predictor,
	intents IntentDetector,
	tel *telemetry.Provider,
	log logger.Logger,
) *Service {
	cfg.SetDefaults()

	return &Service{
		cfg:       cfg,
		store:     store,
		matcher:   substr,
		predictor: predictor,
		intents:   intents,
		cache:     &documentCache{},
		telemetry: tel,
		logger:    log,
		now:       time.Now,
	}
}

// Classify returns up to MaxSuggestions ranked category suggestions for text.
func (s *Service) Classify(ctx context.Context, text string, lang domain.Language) ([]domain.Suggestion, error) {
	start := s.now()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input text", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(trimmed) > s.cfg.MaxTextLength {
		return nil, fmt.Errorf("%w: input text exceeds %d characters", domain.ErrInvalidInput, s.cfg.MaxTextLength)
	}
	if !lang.Supported() {
		return nil, fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidInput, lang)
	}

	// An untrained language is rejected outright; a substring hit alone
	// must not mask the unavailability.
	if !s.predictor.Ready(lang) {
		return nil, fmt.Errorf("%w: language %s", domain.ErrModelNotReady, lang)
	}

	intent := s.intents.Detect(trimmed, lang)

	documents, err := s.fetchDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if intent == domain.IntentPublish {
		documents = leafOnly(documents)
	}

	matches := s.matcher.FindMatches(trimmed, documents, lang)

	scores, predErr := s.scoreDefensively(trimmed, lang)
	if predErr != nil {
		s.logger.Warn("prediction source failed, degrading to substring only",
			logger.String("language", string(lang)),
			logger.Error(predErr))
	}

	suggestions := s.merge(matches, scores, documents, lang, intent)

	if len(suggestions) == 0 && predErr != nil && len(matches) == 0 {
		if errors.Is(predErr, domain.ErrModelNotReady) {
			return nil, predErr
		}
		if len(documents) == 0 {
			return nil, fmt.Errorf("%w: %v", domain.ErrPredictionFailed, predErr)
		}
	}

	if s.telemetry != nil {
		s.telemetry.RecordClassification(ctx, string(lang), string(intent), s.now().Sub(start))
		matchTypes := make([]string, 0, len(suggestions))
		for _, sg := range suggestions {
			matchTypes = append(matchTypes, sg.MatchType)
		}
		s.telemetry.RecordSuggestions(ctx, matchTypes)
	}

	s.logger.Debug("classification served",
		logger.String("language", string(lang)),
		logger.String("intent", string(intent)),
		logger.Int("suggestions", len(suggestions)))

	return suggestions, nil
}

// fetchDocuments performs a live fetch, refreshing the snapshot on success
// and falling back to an unexpired snapshot on failure.
func (s *Service) fetchDocuments(ctx context.Context) ([]domain.TrainingDocument, error) {
	documents, err := s.store.GetAllDocuments(ctx)
	if err == nil {
		s.cache.store(documents, s.now())
		if s.telemetry != nil {
			s.telemetry.Metrics.CacheRefreshes.Inc()
		}
		return documents, nil
	}

	snapshot, age, ok := s.cache.get(s.now(), s.cfg.CacheTTL)
	if ok {
		s.logger.Warn("document store unavailable, serving from cached snapshot",
			logger.Duration("snapshot_age", age),
			logger.Error(err))
		if s.telemetry != nil {
			s.telemetry.Metrics.CacheFallbacks.Inc()
		}
		return snapshot, nil
	}

	return nil, fmt.Errorf("%w: fetching training documents: %v", domain.ErrDatabaseUnavailable, err)
}

// scoreDefensively shields the request from a panicking prediction source.
func (s *Service) scoreDefensively(text string, lang domain.Language) (scores []domain.Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = fmt.Errorf("%w: panic in prediction source: %v", domain.ErrPredictionFailed, r)
		}
	}()

	return s.predictor.ScoreAll(text, lang)
}

// merge applies the ranking policy: a substring match pins slot 1, model
// predictions fill the rest in descending score order, duplicates skipped.
func (s *Service) merge(
	matches []matcher.Match,
	scores []domain.Score,
	documents []domain.TrainingDocument,
	lang domain.Language,
	intent domain.Intent,
) []domain.Suggestion {
	byID := make(map[int64]*domain.TrainingDocument, len(documents))
	for i := range documents {
		byID[documents[i].CategoryID] = &documents[i]
	}

	suggestions := make([]domain.Suggestion, 0, MaxSuggestions)
	used := make(map[int64]bool, MaxSuggestions)

	if len(matches) > 0 {
		m := matches[0]
		suggestions = append(suggestions, s.suggestion(m.Document, lang, intent, m.Score, domain.MatchTypeSubstring))
		used[m.Document.CategoryID] = true
	}

	for _, sc := range scores {
		if len(suggestions) >= MaxSuggestions {
			break
		}
		if used[sc.CategoryID] {
			continue
		}
		doc, ok := byID[sc.CategoryID]
		if !ok {
			// The model can know categories filtered out of the eligible set.
			continue
		}
		suggestions = append(suggestions, s.suggestion(doc, lang, intent, sc.Probability, domain.MatchTypeModel))
		used[sc.CategoryID] = true
	}

	return suggestions
}

func (s *Service) suggestion(
	doc *domain.TrainingDocument,
	lang domain.Language,
	intent domain.Intent,
	score float64,
	matchType string,
) domain.Suggestion {
	return domain.Suggestion{
		CategoryID:   doc.CategoryID,
		CategoryName: doc.Name(lang),
		URL:          s.buildURL(doc, lang, intent),
		Score:        score,
		MatchType:    matchType,
	}
}

// buildURL joins the category's localized path fragment with the navigation
// suffix for the detected intent.
func (s *Service) buildURL(doc *domain.TrainingDocument, lang domain.Language, intent domain.Intent) string {
	suffix := "/ads"
	if intent == domain.IntentPublish {
		suffix = "/ads/create"
	}

	fragment := strings.TrimSuffix(doc.URLPath(lang), "/")
	path := fragment + suffix
	if fragment == "" {
		path = strings.TrimPrefix(suffix, "/")
	}

	if s.cfg.BaseURL == "" {
		return path
	}

	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func leafOnly(documents []domain.TrainingDocument) []domain.TrainingDocument {
	leaves := make([]domain.TrainingDocument, 0, len(documents))
	for _, doc := range documents {
		if doc.IsLeaf {
			leaves = append(leaves, doc)
		}
	}
	return leaves
}
