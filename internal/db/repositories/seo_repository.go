package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

// SeoRepository handles per-page SEO override operations. Rows are keyed by
// page slug; absence of a row is a valid state (frontend falls back to its
// static defaults).
type SeoRepository struct {
	db *sqlx.DB
}

// NewSeoRepository creates a new SeoRepository.
func NewSeoRepository(db *sql.DB) *SeoRepository {
	return &SeoRepository{db: sqlx.NewDb(db, "mysql")}
}

// List retrieves all page SEO overrides ordered by slug.
func (r *SeoRepository) List(ctx context.Context) ([]*models.PageSeo, error) {
	entries := make([]*models.PageSeo, 0)
	err := r.db.SelectContext(ctx, &entries, `
		SELECT slug, title, description, keywords, og_image_url, created_at, updated_at
		FROM page_seo
		ORDER BY slug ASC
	`)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns the SEO override for a page slug, or (nil, nil).
func (r *SeoRepository) Get(ctx context.Context, slug string) (*models.PageSeo, error) {
	var entry models.PageSeo
	err := r.db.GetContext(ctx, &entry, `
		SELECT slug, title, description, keywords, og_image_url, created_at, updated_at
		FROM page_seo
		WHERE slug = ?
	`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert inserts or fully replaces the SEO override for entry.Slug.
func (r *SeoRepository) Upsert(ctx context.Context, entry *models.PageSeo) error {
	now := time.Now()
	entry.UpdatedAt = now
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO page_seo (slug, title, description, keywords, og_image_url, created_at, updated_at)
		VALUES (:slug, :title, :description, :keywords, :og_image_url, :created_at, :updated_at)
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			description = VALUES(description),
			keywords = VALUES(keywords),
			og_image_url = VALUES(og_image_url),
			updated_at = VALUES(updated_at)
	`, entry)
	return err
}

// Delete removes the override for a page slug. Returns false when no row existed.
func (r *SeoRepository) Delete(ctx context.Context, slug string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM page_seo WHERE slug = ?`, slug)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
