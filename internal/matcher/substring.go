// Package matcher implements the deterministic substring matching strategy
// over category display names.
package matcher

import (
	"strings"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/textnorm"
)

// SubstringScore is the fixed confidence assigned to a substring hit.
// Substring hits are exact but must never outrank a high-confidence model
// prediction, so the score is pinned low instead of learned.
const SubstringScore = 0.25

// Match is a single substring hit against a training document.
type Match struct {
	Document *domain.TrainingDocument
	Score    float64
}

// SubstringMatcher finds at most one document whose display name contains
// a normalized variant of the input.
type SubstringMatcher struct {
	normalizer *textnorm.Normalizer
	logger     logger.Logger
}

// NewSubstringMatcher creates a substring matcher.
func NewSubstringMatcher(normalizer *textnorm.Normalizer, log logger.Logger) *SubstringMatcher {
	return &SubstringMatcher{normalizer: normalizer, logger: log}
}

// FindMatches scans documents in their given order and returns the first
// one whose language display name contains any normalized variant of the
// input as a substring. The result list holds at most one match. The
// matcher fails soft: any internal panic yields an empty list.
func (m *SubstringMatcher) FindMatches(
	input string,
	documents []domain.TrainingDocument,
	lang domain.Language,
) (matches []Match) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("substring matcher recovered",
				logger.Any("panic", r),
				logger.String("language", string(lang)),
			)
			matches = nil
		}
	}()

	normalized := m.normalizer.Preprocess(textnorm.Fold(strings.TrimSpace(input)), lang)
	if normalized == "" {
		return nil
	}
	variants := strings.Fields(normalized)

	for i := range documents {
		name := textnorm.Fold(documents[i].Name(lang))
		if name == "" {
			continue
		}
		for _, variant := range variants {
			if strings.Contains(name, variant) {
				m.logger.Debug("substring match",
					logger.Int64("category_id", documents[i].CategoryID),
					logger.String("variant", variant),
				)
				return []Match{{Document: &documents[i], Score: SubstringScore}}
			}
		}
	}

	return nil
}
