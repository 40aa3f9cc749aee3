//nolint:testpackage // Testing internal orchestrator requires same package access
package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/intent"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/matcher"
	"github.com/suqly/category-suggester/internal/prediction"
	"github.com/suqly/category-suggester/internal/testhelpers"
	"github.com/suqly/category-suggester/internal/textnorm"
)

type stubMatcher struct {
	matches []matcher.Match
}

func (s *stubMatcher) FindMatches(string, []domain.TrainingDocument, domain.Language) []matcher.Match {
	return s.matches
}

type stubPredictor struct {
	scores   []domain.Score
	err      error
	panics   bool
	notReady bool
}

func (s *stubPredictor) ScoreAll(string, domain.Language) ([]domain.Score, error) {
	if s.panics {
		panic("prediction blew up")
	}
	return s.scores, s.err
}

func (s *stubPredictor) Ready(domain.Language) bool {
	return !s.notReady
}

type stubIntents struct {
	intent domain.Intent
}

func (s *stubIntents) Detect(string, domain.Language) domain.Intent {
	return s.intent
}

func testDocuments() []domain.TrainingDocument {
	return []domain.TrainingDocument{
		{CategoryID: 1, NameAr: "سيارات", NameKu: "ئۆتۆمبێل", URLPathAr: "/cars", URLPathKu: "/ku/cars", IsLeaf: true},
		{CategoryID: 2, NameAr: "عقارات", NameKu: "خانووبەرە", URLPathAr: "/real-estate", IsLeaf: false},
		{CategoryID: 3, NameAr: "هواتف", NameKu: "مۆبایل", URLPathAr: "/phones", IsLeaf: true},
		{CategoryID: 4, NameAr: "أثاث", NameKu: "کەلوپەل", URLPathAr: "/furniture", IsLeaf: true},
	}
}

func seedStore(store *testhelpers.MemoryDocumentStore) {
	docs := testDocuments()
	for i := range docs {
		_ = store.UpsertDocument(context.Background(), &docs[i])
	}
}

func newStubService(store *testhelpers.MemoryDocumentStore, m SubstringMatcher, p Predictor, in domain.Intent) *Service {
	return NewService(Config{}, store, m, p, &stubIntents{intent: in}, nil, logger.NewNop())
}

func TestClassify_RejectsInvalidInput(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)
	svc := newStubService(store, &stubMatcher{}, &stubPredictor{}, domain.IntentBrowse)

	cases := []struct {
		name string
		text string
		lang domain.Language
	}{
		{"empty", "", domain.LanguageArabic},
		{"whitespace", "   \t ", domain.LanguageArabic},
		{"oversized", strings.Repeat("a", DefaultMaxTextLength+1), domain.LanguageArabic},
		{"unsupported language", "text", domain.Language("fr")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Classify(context.Background(), tc.text, tc.lang)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestClassify_MergeSubstringPinsFirstSlot(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	docs := testDocuments()
	m := &stubMatcher{matches: []matcher.Match{{Document: &docs[0], Score: matcher.SubstringScore}}}
	p := &stubPredictor{scores: []domain.Score{
		{CategoryID: 1, Probability: 0.5},
		{CategoryID: 2, Probability: 0.3},
		{CategoryID: 3, Probability: 0.15},
		{CategoryID: 4, Probability: 0.05},
	}}

	svc := newStubService(store, m, p, domain.IntentBrowse)

	got, err := svc.Classify(context.Background(), "سيارات", domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}
	if got[0].CategoryID != 1 || got[0].MatchType != domain.MatchTypeSubstring || got[0].Score != matcher.SubstringScore {
		t.Errorf("slot 1 must hold the substring match: %+v", got[0])
	}
	if got[1].CategoryID != 2 || got[1].MatchType != domain.MatchTypeModel {
		t.Errorf("slot 2 must hold the top non-duplicate model prediction: %+v", got[1])
	}
	if got[2].CategoryID != 3 {
		t.Errorf("slot 3 must hold the next model prediction: %+v", got[2])
	}
}

func TestClassify_MergeModelOnlyTakesTopThree(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	p := &stubPredictor{scores: []domain.Score{
		{CategoryID: 2, Probability: 0.4},
		{CategoryID: 3, Probability: 0.3},
		{CategoryID: 4, Probability: 0.2},
		{CategoryID: 1, Probability: 0.1},
	}}

	svc := newStubService(store, &stubMatcher{}, p, domain.IntentBrowse)

	got, err := svc.Classify(context.Background(), "شي ما", domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	want := []int64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].CategoryID != id || got[i].MatchType != domain.MatchTypeModel {
			t.Errorf("slot %d: want category %d from model, got %+v", i+1, id, got[i])
		}
	}
}

func TestClassify_PublishFiltersToLeafDocuments(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	p := &stubPredictor{scores: []domain.Score{
		{CategoryID: 2, Probability: 0.6},
		{CategoryID: 1, Probability: 0.4},
	}}

	svc := newStubService(store, &stubMatcher{}, p, domain.IntentPublish)

	got, err := svc.Classify(context.Background(), "بيع سيارة", domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	for _, sg := range got {
		if sg.CategoryID == 2 {
			t.Errorf("non-leaf category must not appear for publish intent: %+v", got)
		}
	}
	if len(got) != 1 || got[0].CategoryID != 1 {
		t.Fatalf("expected only leaf category 1, got %+v", got)
	}
	if got[0].URL != "/cars/ads/create" {
		t.Errorf("publish URL must end with /ads/create: %q", got[0].URL)
	}
}

func TestClassify_CacheFallback(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	p := &stubPredictor{scores: []domain.Score{{CategoryID: 1, Probability: 1}}}
	svc := newStubService(store, &stubMatcher{}, p, domain.IntentBrowse)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	// Warm the snapshot with a live fetch.
	if _, err := svc.Classify(context.Background(), "سيارة", domain.LanguageArabic); err != nil {
		t.Fatalf("warm-up Classify: %v", err)
	}

	store.FailAll = errors.New("elasticsearch is down")

	// Within the TTL the snapshot keeps serving.
	clock = clock.Add(DefaultCacheTTL - time.Second)
	got, err := svc.Classify(context.Background(), "سيارة", domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Classify during outage: %v", err)
	}
	if len(got) != 1 || got[0].CategoryID != 1 {
		t.Errorf("fallback result mismatch: %+v", got)
	}

	// Past the TTL the snapshot is no longer eligible.
	clock = clock.Add(2 * time.Second)
	_, err = svc.Classify(context.Background(), "سيارة", domain.LanguageArabic)
	if !errors.Is(err, domain.ErrDatabaseUnavailable) {
		t.Errorf("expected ErrDatabaseUnavailable after TTL expiry, got %v", err)
	}
}

func TestClassify_ColdCacheIsHardFailure(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	store.FailAll = errors.New("elasticsearch is down")

	svc := newStubService(store, &stubMatcher{}, &stubPredictor{}, domain.IntentBrowse)

	_, err := svc.Classify(context.Background(), "سيارة", domain.LanguageArabic)
	if !errors.Is(err, domain.ErrDatabaseUnavailable) {
		t.Errorf("expected ErrDatabaseUnavailable on cold cache, got %v", err)
	}
}

func TestClassify_PredictionPanicDegradesToSubstring(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	docs := testDocuments()
	m := &stubMatcher{matches: []matcher.Match{{Document: &docs[0], Score: matcher.SubstringScore}}}

	svc := newStubService(store, m, &stubPredictor{panics: true}, domain.IntentBrowse)

	got, err := svc.Classify(context.Background(), "سيارات", domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Classify must absorb prediction panics: %v", err)
	}
	if len(got) != 1 || got[0].MatchType != domain.MatchTypeSubstring {
		t.Errorf("expected substring-only degradation, got %+v", got)
	}
}

func TestClassify_ModelNotReadySurfacesWithoutSubstringMatch(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	p := &stubPredictor{err: domain.ErrModelNotReady}
	svc := newStubService(store, &stubMatcher{}, p, domain.IntentBrowse)

	_, err := svc.Classify(context.Background(), "سيارة", domain.LanguageArabic)
	if !errors.Is(err, domain.ErrModelNotReady) {
		t.Errorf("expected ErrModelNotReady, got %v", err)
	}
}

func TestClassify_ModelNotReadyRejectsDespiteSubstringMatch(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	docs := testDocuments()
	m := &stubMatcher{matches: []matcher.Match{{Document: &docs[0], Score: matcher.SubstringScore}}}
	p := &stubPredictor{notReady: true}

	svc := newStubService(store, m, p, domain.IntentBrowse)

	_, err := svc.Classify(context.Background(), "سيارات", domain.LanguageArabic)
	if !errors.Is(err, domain.ErrModelNotReady) {
		t.Errorf("untrained language must be rejected even with a substring hit, got %v", err)
	}
}

func TestClassify_TextBudgetCountsRunes(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()
	seedStore(store)

	p := &stubPredictor{scores: []domain.Score{{CategoryID: 1, Probability: 1}}}
	svc := newStubService(store, &stubMatcher{}, p, domain.IntentBrowse)

	// Arabic letters are two bytes each; a text at the character budget
	// must pass even though its byte length is double.
	atBudget := strings.Repeat("س", DefaultMaxTextLength)
	if _, err := svc.Classify(context.Background(), atBudget, domain.LanguageArabic); err != nil {
		t.Errorf("text at the character budget must be accepted, got %v", err)
	}

	overBudget := strings.Repeat("س", DefaultMaxTextLength+1)
	if _, err := svc.Classify(context.Background(), overBudget, domain.LanguageArabic); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput past the character budget, got %v", err)
	}
}

func TestBuildURL(t *testing.T) {
	svc := newStubService(testhelpers.NewMemoryDocumentStore(), &stubMatcher{}, &stubPredictor{}, domain.IntentBrowse)

	cases := []struct {
		name    string
		baseURL string
		doc     domain.TrainingDocument
		lang    domain.Language
		intent  domain.Intent
		want    string
	}{
		{"browse", "", domain.TrainingDocument{URLPathAr: "/cars"}, domain.LanguageArabic, domain.IntentBrowse, "/cars/ads"},
		{"publish", "", domain.TrainingDocument{URLPathAr: "/cars"}, domain.LanguageArabic, domain.IntentPublish, "/cars/ads/create"},
		{"trailing slash trimmed", "", domain.TrainingDocument{URLPathAr: "/cars/"}, domain.LanguageArabic, domain.IntentBrowse, "/cars/ads"},
		{"empty fragment", "", domain.TrainingDocument{}, domain.LanguageArabic, domain.IntentPublish, "ads/create"},
		{"kurdish fragment", "", domain.TrainingDocument{URLPathKu: "/ku/cars"}, domain.LanguageKurdish, domain.IntentBrowse, "/ku/cars/ads"},
		{"base url joined", "https://suq.ly/", domain.TrainingDocument{URLPathAr: "/cars"}, domain.LanguageArabic, domain.IntentBrowse, "https://suq.ly/cars/ads"},
		{"base url with empty fragment", "https://suq.ly", domain.TrainingDocument{}, domain.LanguageArabic, domain.IntentBrowse, "https://suq.ly/ads"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc.cfg.BaseURL = tc.baseURL
			got := svc.buildURL(&tc.doc, tc.lang, tc.intent)
			if got != tc.want {
				t.Errorf("buildURL = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestClassify_ArabicPublishEndToEnd exercises the real normalizer, matcher,
// intent detector, and prediction model together.
func TestClassify_ArabicPublishEndToEnd(t *testing.T) {
	store := testhelpers.NewMemoryDocumentStore()

	docs := []domain.TrainingDocument{
		{
			CategoryID: 1, NameAr: "آيفون", NameKu: "ئایفۆن", URLPathAr: "/phones/iphone", IsLeaf: true,
			ExamplesAr: []string{"ايفون ١٥ برو للبيع", "ابيع ايفون مستعمل"},
		},
		{
			CategoryID: 2, NameAr: "سيارات", NameKu: "ئۆتۆمبێل", URLPathAr: "/cars", IsLeaf: true,
			ExamplesAr: []string{"سيارة تويوتا موديل حديث", "ابيع سيارة كورولا"},
		},
		{
			CategoryID: 3, NameAr: "عقارات", NameKu: "خانووبەرە", URLPathAr: "/real-estate", IsLeaf: true,
			ExamplesAr: []string{"شقة للايجار في المنصور", "بيت للبيع مساحة كبيرة"},
		},
	}
	for i := range docs {
		_ = store.UpsertDocument(context.Background(), &docs[i])
	}

	normalizer := textnorm.NewNormalizer(textnorm.DefaultPrefixes())
	log := logger.NewNop()

	predictor := prediction.NewService(normalizer, log)
	if err := predictor.Train(docs, domain.LanguageArabic); err != nil {
		t.Fatalf("Train: %v", err)
	}

	detector := intent.NewDetector(intent.DefaultPublishKeywords(), log)

	svc := NewService(
		Config{},
		store,
		matcher.NewSubstringMatcher(normalizer, log),
		predictor,
		detector,
		nil,
		log,
	)

	got, err := svc.Classify(context.Background(), "أريد بيع آيفون", domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one suggestion")
	}

	first := got[0]
	if first.CategoryID != 1 {
		t.Errorf("expected the iPhone category first, got %+v", got)
	}
	if first.MatchType != domain.MatchTypeSubstring {
		t.Errorf("display name contains the input word, expected a substring match: %+v", first)
	}
	if !strings.HasSuffix(first.URL, "/ads/create") {
		t.Errorf("publish intent must route to the creation flow: %q", first.URL)
	}

	seen := make(map[int64]bool)
	for _, sg := range got {
		if seen[sg.CategoryID] {
			t.Errorf("duplicate category id %d in %+v", sg.CategoryID, got)
		}
		seen[sg.CategoryID] = true
	}
}
