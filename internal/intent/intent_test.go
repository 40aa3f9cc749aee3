//nolint:testpackage // Testing internal detector requires same package access
package intent

import (
	"testing"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
)

func TestDetect_PublishKeyword(t *testing.T) {
	d := NewDetector(map[domain.Language][]string{
		domain.LanguageArabic: {"بيع", "انشر"},
	}, logger.NewNop())

	if got := d.Detect("أريد بيع آيفون", domain.LanguageArabic); got != domain.IntentPublish {
		t.Errorf("Detect = %s, want publish", got)
	}
}

func TestDetect_BrowseWithoutKeyword(t *testing.T) {
	d := NewDetector(map[domain.Language][]string{
		domain.LanguageArabic: {"بيع"},
	}, logger.NewNop())

	if got := d.Detect("سيارات مستعملة", domain.LanguageArabic); got != domain.IntentBrowse {
		t.Errorf("Detect = %s, want browse", got)
	}
}

func TestDetect_CaseInsensitive(t *testing.T) {
	d := NewDetector(map[domain.Language][]string{
		domain.LanguageArabic: {"sell"},
	}, logger.NewNop())

	if got := d.Detect("I want to SELL my phone", domain.LanguageArabic); got != domain.IntentPublish {
		t.Errorf("Detect = %s, want publish for upper-cased keyword hit", got)
	}
}

func TestDetect_UnknownLanguageDefaultsToBrowse(t *testing.T) {
	d := NewDetector(nil, logger.NewNop())

	if got := d.Detect("بيع", domain.Language("fr")); got != domain.IntentBrowse {
		t.Errorf("Detect = %s, want browse for unknown language", got)
	}
}

func TestDetect_EmptyKeywordListDefaultsToBrowse(t *testing.T) {
	d := NewDetector(map[domain.Language][]string{
		domain.LanguageKurdish: {},
	}, logger.NewNop())

	if got := d.Detect("فرۆشتن", domain.LanguageKurdish); got != domain.IntentBrowse {
		t.Errorf("Detect = %s, want browse with no keywords configured", got)
	}
}
