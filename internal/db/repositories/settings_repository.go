package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

// SettingsRepository handles site settings and global block operations. Both
// tables are key → JSON document stores; the backend treats the documents as
// opaque except for the global-block seeding below.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: sqlx.NewDb(db, "mysql")}
}

// GetSetting returns the setting for key, or (nil, nil) when unset.
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (*models.SiteSetting, error) {
	var s models.SiteSetting
	err := r.db.GetContext(ctx, &s, `
		SELECT setting_key, setting_value, updated_at
		FROM site_settings
		WHERE setting_key = ?
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSettings retrieves every setting row.
func (r *SettingsRepository) ListSettings(ctx context.Context) ([]*models.SiteSetting, error) {
	settings := make([]*models.SiteSetting, 0)
	err := r.db.SelectContext(ctx, &settings, `
		SELECT setting_key, setting_value, updated_at
		FROM site_settings
		ORDER BY setting_key ASC
	`)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SetSetting inserts or replaces the document stored under key.
func (r *SettingsRepository) SetSetting(ctx context.Context, key string, value models.JSONMap) (*models.SiteSetting, error) {
	s := &models.SiteSetting{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_settings (setting_key, setting_value, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			setting_value = VALUES(setting_value),
			updated_at = VALUES(updated_at)
	`, s.Key, s.Value, s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetBlock returns the global block for slug, or (nil, nil).
func (r *SettingsRepository) GetBlock(ctx context.Context, slug string) (*models.GlobalBlock, error) {
	var b models.GlobalBlock
	err := r.db.GetContext(ctx, &b, `
		SELECT slug, data, updated_at
		FROM global_blocks
		WHERE slug = ?
	`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBlocks retrieves every global block.
func (r *SettingsRepository) ListBlocks(ctx context.Context) ([]*models.GlobalBlock, error) {
	blocks := make([]*models.GlobalBlock, 0)
	err := r.db.SelectContext(ctx, &blocks, `
		SELECT slug, data, updated_at
		FROM global_blocks
		ORDER BY slug ASC
	`)
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// UpsertBlock inserts or replaces the document for a global block slug.
func (r *SettingsRepository) UpsertBlock(ctx context.Context, slug string, data models.JSONMap) (*models.GlobalBlock, error) {
	b := &models.GlobalBlock{Slug: slug, Data: data, UpdatedAt: time.Now()}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO global_blocks (slug, data, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			data = VALUES(data),
			updated_at = VALUES(updated_at)
	`, b.Slug, b.Data, b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// EnsureBlocks seeds the known global block slugs that have no row yet. Image
// URLs are carried over from the legacy appearance setting when present, so
// deployments upgrading from the settings-only schema keep their images.
func (r *SettingsRepository) EnsureBlocks(ctx context.Context) error {
	appearance, err := r.GetSetting(ctx, models.SettingAppearance)
	if err != nil {
		return err
	}

	seed := func(slug string, data models.JSONMap) error {
		existing, err := r.GetBlock(ctx, slug)
		if err != nil || existing != nil {
			return err
		}
		_, err = r.UpsertBlock(ctx, slug, data)
		return err
	}

	legacy := func(key string) string {
		if appearance == nil {
			return ""
		}
		if s, ok := appearance.Value[key].(string); ok {
			return s
		}
		return ""
	}

	if err := seed(models.BlockHomeHero, models.JSONMap{"imageUrl": legacy("homeHeroUrl")}); err != nil {
		return err
	}
	if err := seed(models.BlockTransitionLogo, models.JSONMap{"imageUrl": legacy("transitionLogoUrl")}); err != nil {
		return err
	}
	return seed(models.BlockPricingTable, models.JSONMap{"rows": []interface{}{}})
}
