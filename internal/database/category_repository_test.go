//nolint:testpackage // Testing internal repositories requires same package access
package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name_ar", "name_ku", "url_path_ar", "url_path_ku", "is_leaf", "parent_id", "path",
	})
}

func TestCategoryRepository_GetAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM categories ORDER BY id").
		WillReturnRows(categoryRows().
			AddRow(1, "سيارات", "ئۆتۆمبێل", "/cars", "/cars-ku", true, nil, "1").
			AddRow(2, "عقارات", "خانووبەرە", "/real-estate", "/real-estate-ku", false, nil, "2"))

	categories, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].ID != 1 || !categories[0].IsLeaf {
		t.Errorf("unexpected first category: %+v", categories[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCategoryRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM categories WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(categoryRows())

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestBrandModelRepository_GetByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBrandModelRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM brand_models").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "category_id", "name_en", "name_ar", "name_ku", "is_variant",
		}).
			AddRow(10, 1, "Toyota", "تويوتا", "تۆیۆتا", false).
			AddRow(11, 1, "Corolla", "كورولا", "كۆرۆلا", true))

	models, err := repo.GetByCategory(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByCategory: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(models))
	}
	if models[1].NameEn != "Corolla" || !models[1].IsVariant {
		t.Errorf("unexpected variant row: %+v", models[1])
	}
}
