package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

var seoCols = []string{"slug", "title", "description", "keywords", "og_image_url", "created_at", "updated_at"}

func newSeoRepo(t *testing.T) (*SeoRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSeoRepository(db), mock
}

func TestSeoGet_Found(t *testing.T) {
	repo, mock := newSeoRepo(t)
	mock.ExpectQuery("SELECT.*FROM page_seo WHERE slug").
		WithArgs("home").
		WillReturnRows(sqlmock.NewRows(seoCols).
			AddRow("home", "Мастерская", "Архитектурная мастерская",
				`["архитектура","дизайн"]`, nil, time.Now(), time.Now()))

	entry, err := repo.Get(context.Background(), "home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry, got nil")
	}
	if len(entry.Keywords) != 2 {
		t.Errorf("Keywords = %v", entry.Keywords)
	}
}

func TestSeoGet_NotFound(t *testing.T) {
	repo, mock := newSeoRepo(t)
	mock.ExpectQuery("SELECT.*FROM page_seo WHERE slug").
		WillReturnRows(sqlmock.NewRows(seoCols))

	entry, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Error("expected nil; absence is a valid state")
	}
}

func TestSeoUpsert(t *testing.T) {
	repo, mock := newSeoRepo(t)
	mock.ExpectExec("INSERT INTO page_seo.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.PageSeo{
		Slug:     "kontakty",
		Title:    strPtr("Контакты"),
		Keywords: models.StringList{"контакты"},
	}
	if err := repo.Upsert(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.UpdatedAt.IsZero() || entry.CreatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestSeoDelete(t *testing.T) {
	repo, mock := newSeoRepo(t)
	mock.ExpectExec("DELETE FROM page_seo WHERE slug").
		WithArgs("home").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.Delete(context.Background(), "home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("expected found = true")
	}
}
