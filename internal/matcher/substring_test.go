//nolint:testpackage // Testing internal matcher requires same package access
package matcher

import (
	"testing"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/textnorm"
)

func newTestMatcher() *SubstringMatcher {
	return NewSubstringMatcher(textnorm.NewNormalizer(nil), logger.NewNop())
}

func docs() []domain.TrainingDocument {
	return []domain.TrainingDocument{
		{CategoryID: 1, NameAr: "سيارات للبيع", NameKu: "ئۆتۆمبێل"},
		{CategoryID: 2, NameAr: "قطع غيار سيارات", NameKu: "پارچەی ئۆتۆمبێل"},
		{CategoryID: 3, NameAr: "موبايلات", NameKu: "مۆبایل"},
	}
}

func TestFindMatches_SingleResultFirstInOrder(t *testing.T) {
	m := newTestMatcher()

	// Both documents 1 and 2 contain "سيارات"; only the first in iteration
	// order is returned.
	matches := m.FindMatches("سيارات", docs(), domain.LanguageArabic)
	if len(matches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(matches))
	}
	if matches[0].Document.CategoryID != 1 {
		t.Errorf("expected first document (id 1), got %d", matches[0].Document.CategoryID)
	}
	if matches[0].Score != SubstringScore {
		t.Errorf("expected fixed score %v, got %v", SubstringScore, matches[0].Score)
	}
}

func TestFindMatches_StrippedPrefixVariant(t *testing.T) {
	m := newTestMatcher()

	// "السيارات" matches via its stripped variant "سيارات".
	matches := m.FindMatches("السيارات", docs(), domain.LanguageArabic)
	if len(matches) != 1 {
		t.Fatalf("expected match via stripped prefix, got %d matches", len(matches))
	}
	if matches[0].Document.CategoryID != 1 {
		t.Errorf("expected category 1, got %d", matches[0].Document.CategoryID)
	}
}

func TestFindMatches_CaseInsensitive(t *testing.T) {
	m := newTestMatcher()
	documents := []domain.TrainingDocument{
		{CategoryID: 7, NameAr: "آيفون iPhone"},
	}

	matches := m.FindMatches("IPHONE", documents, domain.LanguageArabic)
	if len(matches) != 1 {
		t.Fatalf("expected case-insensitive match, got %d matches", len(matches))
	}
}

func TestFindMatches_NoMatch(t *testing.T) {
	m := newTestMatcher()

	if matches := m.FindMatches("عقارات", docs(), domain.LanguageArabic); len(matches) != 0 {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestFindMatches_BlankInput(t *testing.T) {
	m := newTestMatcher()

	if matches := m.FindMatches("   ", docs(), domain.LanguageArabic); len(matches) != 0 {
		t.Errorf("expected no matches for blank input, got %v", matches)
	}
}

func TestFindMatches_EmptyDocuments(t *testing.T) {
	m := newTestMatcher()

	if matches := m.FindMatches("سيارات", nil, domain.LanguageArabic); len(matches) != 0 {
		t.Errorf("expected no matches with no documents, got %v", matches)
	}
}
