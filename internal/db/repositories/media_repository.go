// media_repository.go implements the shared media library: URL-deduplicated
// asset rows plus the reference scrub that runs when an asset is deleted.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/masterskaya-studio/site-backend/internal/db"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

// MediaRepository handles media library database operations.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new MediaRepository.
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// List retrieves all media assets, newest first.
func (r *MediaRepository) List(ctx context.Context) ([]*models.MediaAsset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, title, created_at
		FROM media_assets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]*models.MediaAsset, 0)
	for rows.Next() {
		a := &models.MediaAsset{}
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// GetByURL returns the asset registered for url, or (nil, nil).
func (r *MediaRepository) GetByURL(ctx context.Context, url string) (*models.MediaAsset, error) {
	a := &models.MediaAsset{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, url, title, created_at
		FROM media_assets
		WHERE url = ?
	`, url).Scan(&a.ID, &a.URL, &a.Title, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Register records url in the media library. Assets are deduplicated by URL:
// registering a known URL returns the existing row, backfilling its title when
// the row has none and the caller supplies one.
func (r *MediaRepository) Register(ctx context.Context, url string, title *string) (*models.MediaAsset, error) {
	existing, err := r.GetByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Title == nil && title != nil && *title != "" {
			existing.Title = title
			if _, err := r.db.ExecContext(ctx,
				`UPDATE media_assets SET title = ? WHERE id = ?`, title, existing.ID); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	a := &models.MediaAsset{
		ID:        uuid.New().String(),
		URL:       url,
		Title:     title,
		CreatedAt: time.Now(),
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO media_assets (id, url, title, created_at)
		VALUES (?, ?, ?, ?)
	`, a.ID, a.URL, a.Title, a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an asset and scrubs its URL from every place that may
// reference it, all in one transaction. Returns the removed asset's URL so the
// caller can delete the file from disk, or ("", false, nil) when the id is
// unknown.
func (r *MediaRepository) Delete(ctx context.Context, id string) (url string, found bool, err error) {
	err = db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT url FROM media_assets WHERE id = ?`, id).Scan(&url)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM media_assets WHERE id = ?`, id); err != nil {
			return err
		}
		return scrubURL(ctx, tx, url)
	})
	if err != nil {
		return "", false, err
	}
	return url, found, nil
}

// scrubURL removes every reference to url from the content tables so no page
// keeps pointing at a file that is about to disappear from disk.
func scrubURL(ctx context.Context, tx *sql.Tx, url string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET hero_image_url = NULL WHERE hero_image_url = ?`, url); err != nil {
		return err
	}

	// Gallery and scheme rows referencing the URL are dropped, then each
	// affected project's ordering is closed up again.
	for _, table := range []string{"project_media", "project_schemes"} {
		projectIDs, err := referencingProjects(ctx, tx, table, url)
		if err != nil {
			return err
		}
		if len(projectIDs) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE url = ?`, url); err != nil {
			return err
		}
		for _, pid := range projectIDs {
			if err := resequenceProjectChildren(ctx, tx, table, pid); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE page_seo SET og_image_url = NULL WHERE og_image_url = ?`, url); err != nil {
		return err
	}

	if err := scrubContentOGImage(ctx, tx, url); err != nil {
		return err
	}
	if err := scrubSettingValues(ctx, tx, "site_settings", "setting_key", "setting_value", url); err != nil {
		return err
	}
	return scrubSettingValues(ctx, tx, "global_blocks", "slug", "data", url)
}

func referencingProjects(ctx context.Context, tx *sql.Tx, table, url string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT project_id FROM `+table+` WHERE url = ?`, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func resequenceProjectChildren(ctx context.Context, tx *sql.Tx, table, projectID string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE project_id = ? ORDER BY display_order ASC`, projectID)
	if err != nil {
		return err
	}
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for idx, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET display_order = ? WHERE id = ?`, idx, id); err != nil {
			return err
		}
	}
	return nil
}

// scrubContentOGImage clears seo.ogImage inside project content documents that
// reference the URL. The documents are rewritten in Go through the model
// helpers so an emptied SEO section collapses instead of lingering as "{}".
func scrubContentOGImage(ctx context.Context, tx *sql.Tx, url string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, content FROM projects
		WHERE JSON_UNQUOTE(JSON_EXTRACT(content, '$.seo.ogImage')) = ?
	`, url)
	if err != nil {
		return err
	}

	type patch struct {
		id      string
		content *models.ProjectContent
	}
	patches := make([]patch, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return err
		}
		c, err := models.ParseContent(raw)
		if err != nil {
			rows.Close()
			return err
		}
		if c == nil || c.SEO == nil {
			continue
		}
		c.SEO.OGImage = ""
		patches = append(patches, patch{
			id:      id,
			content: models.BuildContent(c.Body, c.BodyHTML, c.Facts, c.SEO),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range patches {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET content = ? WHERE id = ?`, p.content, p.id); err != nil {
			return err
		}
	}
	return nil
}

// scrubJSONValue blanks every string equal to url anywhere inside a decoded
// JSON document, walking nested objects and arrays. Setting and block
// documents nest freely (pricing rows, socials lists), so a flat pass over
// the top level is not enough. Reports whether anything changed.
func scrubJSONValue(v interface{}, url string) (interface{}, bool) {
	switch val := v.(type) {
	case string:
		if val == url {
			return "", true
		}
	case map[string]interface{}:
		changed := false
		for k, inner := range val {
			next, c := scrubJSONValue(inner, url)
			if c {
				val[k] = next
				changed = true
			}
		}
		return val, changed
	case []interface{}:
		changed := false
		for i, inner := range val {
			next, c := scrubJSONValue(inner, url)
			if c {
				val[i] = next
				changed = true
			}
		}
		return val, changed
	}
	return v, false
}

// scrubSettingValues blanks any string value equal to url inside the JSON
// documents of a key/value table (site_settings or global_blocks), however
// deeply nested.
func scrubSettingValues(ctx context.Context, tx *sql.Tx, table, keyCol, valCol, url string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+keyCol+`, `+valCol+` FROM `+table+` WHERE `+valCol+` LIKE CONCAT('%', ?, '%')`, url)
	if err != nil {
		return err
	}

	type patch struct {
		key   string
		value models.JSONMap
	}
	patches := make([]patch, 0)
	for rows.Next() {
		var key string
		var value models.JSONMap
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return err
		}
		changed := false
		for k, v := range value {
			next, c := scrubJSONValue(v, url)
			if c {
				value[k] = next
				changed = true
			}
		}
		if changed {
			patches = append(patches, patch{key: key, value: value})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range patches {
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET `+valCol+` = ? WHERE `+keyCol+` = ?`, p.value, p.key); err != nil {
			return err
		}
	}
	return nil
}
