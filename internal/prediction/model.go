// Package prediction adapts the naive-Bayes text classifier into the
// ranked (category, probability) interface the orchestrator consumes. Each
// language has its own independently trained and independently replaceable
// model.
package prediction

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/navossoc/bayesian"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/textnorm"
)

// minTrainableCategories is the smallest class count the underlying
// classifier accepts.
const minTrainableCategories = 2

// model is one trained per-language classifier. It is replaced wholesale on
// retraining, never mutated in place.
type model struct {
	clf *bayesian.Classifier
	// ids is parallel to clf.Classes: ids[i] is the category id behind
	// class index i.
	ids []int64
}

// Service trains and queries the per-language models.
type Service struct {
	mu         sync.RWMutex
	models     map[domain.Language]*model
	normalizer *textnorm.Normalizer
	logger     logger.Logger
}

// NewService creates an untrained prediction service.
func NewService(normalizer *textnorm.Normalizer, log logger.Logger) *Service {
	return &Service{
		models:     make(map[domain.Language]*model),
		normalizer: normalizer,
		logger:     log,
	}
}

// Train builds a fresh model for lang from the training documents and swaps
// it in atomically. A failure leaves any previously trained model in place.
// Only categories with usable text for the language become classes; fewer
// than two such categories means there is nothing to train on.
func (s *Service) Train(docs []domain.TrainingDocument, lang domain.Language) error {
	type trainable struct {
		id     int64
		tokens [][]string
	}

	candidates := make([]trainable, 0, len(docs))
	for i := range docs {
		tokens := s.documentTokens(&docs[i], lang)
		if len(tokens) == 0 {
			continue
		}
		candidates = append(candidates, trainable{id: docs[i].CategoryID, tokens: tokens})
	}

	if len(candidates) < minTrainableCategories {
		return fmt.Errorf("%w: %d trainable categories for language %s",
			domain.ErrModelNotReady, len(candidates), lang)
	}

	classes := make([]bayesian.Class, len(candidates))
	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		classes[i] = bayesian.Class(strconv.FormatInt(c.id, 10))
		ids[i] = c.id
	}

	clf := bayesian.NewClassifier(classes...)
	for i, c := range candidates {
		for _, doc := range c.tokens {
			clf.Learn(doc, classes[i])
		}
	}

	s.mu.Lock()
	s.models[lang] = &model{clf: clf, ids: ids}
	s.mu.Unlock()

	s.logger.Info("model trained",
		logger.String("language", string(lang)),
		logger.Int("categories", len(ids)),
	)
	return nil
}

// Ready reports whether a trained model exists for lang.
func (s *Service) Ready(lang domain.Language) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models[lang] != nil
}

// ScoreAll scores text against every category known to the language's
// model and returns (category, probability) pairs sorted by descending
// probability. Probabilities sum to 1 across the whole list.
func (s *Service) ScoreAll(text string, lang domain.Language) ([]domain.Score, error) {
	s.mu.RLock()
	m := s.models[lang]
	s.mu.RUnlock()

	if m == nil {
		return nil, fmt.Errorf("%w: language %s", domain.ErrModelNotReady, lang)
	}

	tokens := strings.Fields(s.normalizer.Preprocess(textnorm.Fold(text), lang))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no usable tokens", domain.ErrPredictionFailed)
	}

	raw, _, _ := m.clf.LogScores(tokens)
	probs := Softmax(raw)

	scores := make([]domain.Score, len(probs))
	for i, p := range probs {
		scores[i] = domain.Score{CategoryID: m.ids[i], Probability: p}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Probability > scores[j].Probability
	})
	return scores, nil
}

// documentTokens collects the training text for one document in one
// language: the curated examples, the display name, and the brand/model
// names. Each entry becomes one learned document.
func (s *Service) documentTokens(doc *domain.TrainingDocument, lang domain.Language) [][]string {
	texts := make([]string, 0, len(doc.Examples(lang))+1+len(doc.Models))
	texts = append(texts, doc.Examples(lang)...)
	if name := doc.Name(lang); name != "" {
		texts = append(texts, name)
	}
	for _, bm := range doc.Models {
		name := bm.NameAr
		if lang == domain.LanguageKurdish {
			name = bm.NameKu
		}
		if name != "" {
			texts = append(texts, name)
		}
		if bm.NameEn != "" {
			texts = append(texts, bm.NameEn)
		}
	}

	tokens := make([][]string, 0, len(texts))
	for _, text := range texts {
		fields := strings.Fields(s.normalizer.Preprocess(textnorm.Fold(text), lang))
		if len(fields) > 0 {
			tokens = append(tokens, fields)
		}
	}
	return tokens
}
