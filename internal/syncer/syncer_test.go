//nolint:testpackage // Testing internal syncer requires same package access
package syncer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/testhelpers"
)

func newTestSyncer() (*Syncer, *testhelpers.MemoryCategorySource, *testhelpers.MemoryBrandModelSource, *testhelpers.MemoryDocumentStore) {
	categories := testhelpers.NewMemoryCategorySource()
	brandModels := testhelpers.NewMemoryBrandModelSource()
	store := testhelpers.NewMemoryDocumentStore()
	s := New(categories, brandModels, store, logger.NewNop())
	return s, categories, brandModels, store
}

func seedTaxonomy(categories *testhelpers.MemoryCategorySource, brandModels *testhelpers.MemoryBrandModelSource) {
	categories.Put(domain.Category{ID: 1, NameAr: "سيارات", NameKu: "ئۆتۆمبێل", URLPathAr: "/cars", IsLeaf: true})
	categories.Put(domain.Category{ID: 2, NameAr: "عقارات", NameKu: "خانووبەرە", URLPathAr: "/real-estate", IsLeaf: false})
	brandModels.Put(1,
		domain.BrandModel{ID: 10, CategoryID: 1, NameEn: "Toyota", NameAr: "تويوتا"},
		domain.BrandModel{ID: 11, CategoryID: 1, NameEn: "Corolla", NameAr: "كورولا", IsVariant: true},
	)
}

func TestFullSync_BuildsDocuments(t *testing.T) {
	s, categories, brandModels, store := newTestSyncer()
	seedTaxonomy(categories, brandModels)

	report, err := s.FullSync(context.Background())
	if err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if report.Synced != 2 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}

	leaf := store.Documents[1]
	if !leaf.IsLeaf || !leaf.HasModels || len(leaf.Models) != 2 {
		t.Errorf("leaf document not built from brand rows: %+v", leaf)
	}

	branch := store.Documents[2]
	if branch.IsLeaf || branch.HasModels || len(branch.Models) != 0 {
		t.Errorf("non-leaf document must have no models: %+v", branch)
	}
}

func TestFullSync_IdempotentAndPreservesExamples(t *testing.T) {
	s, categories, brandModels, store := newTestSyncer()
	seedTaxonomy(categories, brandModels)

	if _, err := s.FullSync(context.Background()); err != nil {
		t.Fatalf("first FullSync: %v", err)
	}

	// Operator curates examples between syncs.
	if err := store.AppendExample(context.Background(), 1, domain.LanguageArabic, "سيارة تويوتا للبيع"); err != nil {
		t.Fatalf("AppendExample: %v", err)
	}
	withExamples := store.Documents[1]

	if _, err := s.FullSync(context.Background()); err != nil {
		t.Fatalf("second FullSync: %v", err)
	}
	after := store.Documents[1]

	if !reflect.DeepEqual(withExamples, after) {
		t.Errorf("resync with unchanged rows must be idempotent:\nbefore %+v\nafter  %+v", withExamples, after)
	}
	if len(after.ExamplesAr) != 1 {
		t.Errorf("curated examples must survive resync, got %v", after.ExamplesAr)
	}
}

func TestFullSync_AllFailedIsHardFailure(t *testing.T) {
	s, categories, _, store := newTestSyncer()
	categories.Put(domain.Category{ID: 1, NameAr: "سيارات", IsLeaf: true})
	store.FailAll = errors.New("document store down")

	report, err := s.FullSync(context.Background())
	if err == nil {
		t.Fatal("expected hard failure when every category failed")
	}
	if report.Failed != 1 || report.Synced != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestApplyCategoryChange_InsertAndDelete(t *testing.T) {
	s, categories, _, store := newTestSyncer()
	categories.Put(domain.Category{ID: 5, NameAr: "اثاث", IsLeaf: true})

	err := s.ApplyCategoryChange(context.Background(), domain.CategoryChange{
		Operation: domain.OperationInsert, CategoryID: 5,
	})
	if err != nil {
		t.Fatalf("ApplyCategoryChange insert: %v", err)
	}
	if _, ok := store.Documents[5]; !ok {
		t.Fatal("insert must create the document")
	}

	err = s.ApplyCategoryChange(context.Background(), domain.CategoryChange{
		Operation: domain.OperationDelete, CategoryID: 5,
	})
	if err != nil {
		t.Fatalf("ApplyCategoryChange delete: %v", err)
	}
	if _, ok := store.Documents[5]; ok {
		t.Error("delete must remove the document")
	}
}

func TestApplyCategoryChange_StaleInsertDropped(t *testing.T) {
	s, _, _, store := newTestSyncer()

	// INSERT event for a row that was deleted before we could read it.
	err := s.ApplyCategoryChange(context.Background(), domain.CategoryChange{
		Operation: domain.OperationInsert, CategoryID: 404,
	})
	if err != nil {
		t.Fatalf("stale insert must be dropped, not failed: %v", err)
	}
	if len(store.Documents) != 0 {
		t.Error("stale insert must not create a document")
	}
}

func TestApplyCategoryChange_UnknownOperationIgnored(t *testing.T) {
	s, _, _, _ := newTestSyncer()

	err := s.ApplyCategoryChange(context.Background(), domain.CategoryChange{
		Operation: "TRUNCATE", CategoryID: 1,
	})
	if err != nil {
		t.Errorf("unknown operation must be ignored, got %v", err)
	}
}

func TestApplyBrandModelChange_Lifecycle(t *testing.T) {
	s, categories, _, store := newTestSyncer()
	categories.Put(domain.Category{ID: 1, NameAr: "سيارات", IsLeaf: true})
	if _, err := s.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	insert := domain.BrandModelChange{
		Operation: domain.OperationInsert, ID: 10, CategoryID: 1, NameEn: "Toyota",
	}
	if err := s.ApplyBrandModelChange(context.Background(), insert); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if doc := store.Documents[1]; !doc.HasModels || len(doc.Models) != 1 {
		t.Fatalf("insert must append and raise has_models: %+v", store.Documents[1])
	}

	update := domain.BrandModelChange{
		Operation: domain.OperationUpdate, ID: 10, CategoryID: 1, NameEn: "Toyota Motors",
	}
	if err := s.ApplyBrandModelChange(context.Background(), update); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.Documents[1].Models[0].NameEn != "Toyota Motors" {
		t.Errorf("update must replace by id: %+v", store.Documents[1].Models)
	}

	remove := domain.BrandModelChange{
		Operation: domain.OperationDelete, ID: 10, CategoryID: 1,
	}
	if err := s.ApplyBrandModelChange(context.Background(), remove); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if doc := store.Documents[1]; doc.HasModels || len(doc.Models) != 0 {
		t.Errorf("delete must remove by id and lower has_models: %+v", doc)
	}
}
