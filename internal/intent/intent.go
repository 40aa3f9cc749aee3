// Package intent provides the keyword-based browse/publish signal used to
// select which category subset is eligible for a query.
package intent

import (
	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/textnorm"
)

// DefaultPublishKeywords returns the built-in per-language publish keyword
// lists. Operators override these from configuration.
func DefaultPublishKeywords() map[domain.Language][]string {
	return map[domain.Language][]string{
		domain.LanguageArabic:  {"بيع", "ابيع", "للبيع", "انشر", "اعلان"},
		domain.LanguageKurdish: {"فرۆشتن", "بفرۆشە", "ڕیکلام"},
	}
}

// Detector classifies a query as browse or publish intent from configured
// per-language keyword lists. Matching is a folded, case-insensitive
// substring check backed by an Aho-Corasick automaton per language.
type Detector struct {
	matchers map[domain.Language]*ahocorasick.Matcher
	logger   logger.Logger
}

// NewDetector builds a Detector. Languages with empty keyword lists get no
// matcher and always detect browse intent. Nil keywords fall back to the
// defaults.
func NewDetector(keywords map[domain.Language][]string, log logger.Logger) *Detector {
	if keywords == nil {
		keywords = DefaultPublishKeywords()
	}

	matchers := make(map[domain.Language]*ahocorasick.Matcher, len(keywords))
	for lang, list := range keywords {
		folded := make([]string, 0, len(list))
		for _, kw := range list {
			if f := textnorm.Fold(kw); f != "" {
				folded = append(folded, f)
			}
		}
		if len(folded) == 0 {
			continue
		}
		matchers[lang] = ahocorasick.NewStringMatcher(folded)
	}

	return &Detector{matchers: matchers, logger: log}
}

// Detect returns IntentPublish if the raw input contains any configured
// publish keyword for the language, IntentBrowse otherwise. This signal
// must never abort a request: unknown languages, missing keyword lists,
// and internal panics all default to IntentBrowse.
func (d *Detector) Detect(input string, lang domain.Language) (result domain.Intent) {
	result = domain.IntentBrowse

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("intent detection recovered",
				logger.Any("panic", r),
				logger.String("language", string(lang)),
			)
			result = domain.IntentBrowse
		}
	}()

	m, ok := d.matchers[lang]
	if !ok {
		return domain.IntentBrowse
	}

	if hits := m.Match([]byte(textnorm.Fold(input))); len(hits) > 0 {
		d.logger.Debug("publish intent detected", logger.String("language", string(lang)))
		return domain.IntentPublish
	}

	return domain.IntentBrowse
}
