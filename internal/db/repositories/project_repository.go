// project_repository.go implements persistence for projects and their owned
// media/scheme rows: listing, slug lookup with relations, create with slug
// de-duplication, partial update with content merging, cascade delete, and
// the two transactional bulk operations (reorder, media replace).
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/masterskaya-studio/site-backend/internal/db"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

// ProjectRepository handles project database operations.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, slug, title, tagline, location, year, area, scope, intro,
	hero_image_url, display_order, categories, content, created_at, updated_at`

func scanProject(row interface{ Scan(...interface{}) error }) (*models.Project, error) {
	p := &models.Project{}
	var rawContent []byte
	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Tagline,
		&p.Location,
		&p.Year,
		&p.Area,
		&p.Scope,
		&p.Intro,
		&p.HeroImageURL,
		&p.Order,
		&p.Categories,
		&rawContent,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Content, err = models.ParseContent(rawContent); err != nil {
		return nil, fmt.Errorf("invalid content column for project %s: %w", p.ID, err)
	}
	return p, nil
}

// ListAll retrieves every project ordered by display position.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY display_order ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// GetBySlug retrieves a project with its gallery and scheme relations.
// Returns (nil, nil) when the slug is unknown.
func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE slug = ?
	`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.Gallery, err = r.listMedia(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Schemes, err = r.listSchemes(ctx, p.ID); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *ProjectRepository) listMedia(ctx context.Context, projectID string) ([]*models.ProjectMedia, error) {
	query := `
		SELECT id, project_id, url, caption, kind, display_order, created_at
		FROM project_media
		WHERE project_id = ?
		ORDER BY display_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := make([]*models.ProjectMedia, 0)
	for rows.Next() {
		m := &models.ProjectMedia{}
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.URL, &m.Caption, &m.Kind, &m.Order, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (r *ProjectRepository) listSchemes(ctx context.Context, projectID string) ([]*models.ProjectScheme, error) {
	query := `
		SELECT id, project_id, title, url, display_order, created_at
		FROM project_schemes
		WHERE project_id = ?
		ORDER BY display_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schemes := make([]*models.ProjectScheme, 0)
	for rows.Next() {
		s := &models.ProjectScheme{}
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Title, &s.URL, &s.Order, &s.CreatedAt); err != nil {
			return nil, err
		}
		schemes = append(schemes, s)
	}
	return schemes, rows.Err()
}

// SlugExists reports whether any project already uses the slug.
func (r *ProjectRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE slug = ?`, slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UniqueSlug returns base unchanged when free, otherwise the first free
// "base-2", "base-3", … variant. Used when the slug is auto-derived from the
// title; an explicitly requested slug goes through Create's conflict check
// instead.
func (r *ProjectRepository) UniqueSlug(ctx context.Context, base string) (string, error) {
	taken, err := r.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := r.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// Create inserts a new project at the end of the display order.
// Returns ErrSlugTaken when the slug is already in use.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	taken, err := r.SlugExists(ctx, p.Slug)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}

	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order) + 1, 0) FROM projects`).Scan(&p.Order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (id, slug, title, tagline, location, year, area, scope, intro,
			hero_image_url, display_order, categories, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Slug,
		p.Title,
		p.Tagline,
		p.Location,
		p.Year,
		p.Area,
		p.Scope,
		p.Intro,
		p.HeroImageURL,
		p.Order,
		p.Categories,
		p.Content,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return err
}

// ProjectUpdate is a field-presence struct for partial project updates: a nil
// field is left untouched, a set field is written. For nullable columns an
// empty string clears the column to NULL. The content sub-fields are merged
// into the existing content document individually, so patching facts never
// discards the body.
type ProjectUpdate struct {
	Slug         *string
	Title        *string
	Tagline      *string
	Location     *string
	Year         *string
	Area         *string
	Scope        *string
	Intro        *string
	HeroImageURL *string
	Categories   *[]string

	Body     *[]string
	BodyHTML *string
	Facts    *[]models.ProjectFact
	SEO      *models.ContentSEO
}

func applyOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	if *src == "" {
		*dst = nil
		return
	}
	v := *src
	*dst = &v
}

// Update applies a partial update to the project identified by slug.
// Returns (nil, nil) when the slug is unknown and ErrSlugTaken when a rename
// targets an existing slug.
func (r *ProjectRepository) Update(ctx context.Context, slug string, upd *ProjectUpdate) (*models.Project, error) {
	p, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if upd.Slug != nil && *upd.Slug != p.Slug {
		taken, err := r.SlugExists(ctx, *upd.Slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		p.Slug = *upd.Slug
	}
	if upd.Title != nil && *upd.Title != "" {
		p.Title = *upd.Title
	}
	applyOptional(&p.Tagline, upd.Tagline)
	applyOptional(&p.Location, upd.Location)
	applyOptional(&p.Year, upd.Year)
	applyOptional(&p.Area, upd.Area)
	applyOptional(&p.Scope, upd.Scope)
	applyOptional(&p.Intro, upd.Intro)
	applyOptional(&p.HeroImageURL, upd.HeroImageURL)
	if upd.Categories != nil {
		p.Categories = models.StringList(*upd.Categories)
	}

	// Rebuild content field by field, keeping sub-fields the patch did not touch.
	if upd.Body != nil || upd.BodyHTML != nil || upd.Facts != nil || upd.SEO != nil {
		body, bodyHTML, facts, seo := []string(nil), "", []models.ProjectFact(nil), (*models.ContentSEO)(nil)
		if p.Content != nil {
			body, bodyHTML, facts, seo = p.Content.Body, p.Content.BodyHTML, p.Content.Facts, p.Content.SEO
		}
		if upd.Body != nil {
			body = *upd.Body
		}
		if upd.BodyHTML != nil {
			bodyHTML = *upd.BodyHTML
		}
		if upd.Facts != nil {
			facts = *upd.Facts
		}
		if upd.SEO != nil {
			seo = upd.SEO
		}
		p.Content = models.BuildContent(body, bodyHTML, facts, seo)
	}

	p.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET slug = ?, title = ?, tagline = ?, location = ?, year = ?, area = ?, scope = ?,
			intro = ?, hero_image_url = ?, categories = ?, content = ?, updated_at = ?
		WHERE id = ?
	`

	_, err = r.db.ExecContext(ctx, query,
		p.Slug,
		p.Title,
		p.Tagline,
		p.Location,
		p.Year,
		p.Area,
		p.Scope,
		p.Intro,
		p.HeroImageURL,
		p.Categories,
		p.Content,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a project (media and schemes cascade) and closes the gap in
// the display order so remaining projects stay at 0..n-1. Returns false when
// the slug is unknown.
func (r *ProjectRepository) Delete(ctx context.Context, slug string) (bool, error) {
	found := false
	err := db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE slug = ?`, slug)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true
		return resequenceTable(ctx, tx, "projects")
	})
	return found, err
}

// Reorder persists a new display order: the position of each slug in the
// supplied list becomes its order value. The whole write is transactional and
// fails with ErrUnknownSlug when the list references a missing project.
func (r *ProjectRepository) Reorder(ctx context.Context, slugs []string) error {
	return db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		for idx, slug := range slugs {
			res, err := tx.ExecContext(ctx,
				`UPDATE projects SET display_order = ? WHERE slug = ?`, idx, slug)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				// RowsAffected is also 0 when the value did not change, so
				// confirm the slug really is missing before failing.
				exists, err := slugExistsTx(ctx, tx, slug)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("%w: %s", ErrUnknownSlug, slug)
				}
			}
		}
		// A partial list must still leave a gap-free 0..n-1 permutation:
		// rows missing from the list keep their relative order behind the
		// listed ones.
		return resequenceRemainder(ctx, tx, "projects", "slug", slugs)
	})
}

func slugExistsTx(ctx context.Context, tx *sql.Tx, slug string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE slug = ?`, slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// resequenceTable rewrites display_order to 0..n-1 preserving the current
// relative order. Works for the projects and team_members tables, which share
// the display_order column.
func resequenceTable(ctx context.Context, tx *sql.Tx, table string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM `+table+` ORDER BY display_order ASC, created_at ASC`)
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

// resequenceRemainder assigns sequential order values starting at len(listed)
// to every row whose key is not in listed, preserving their current relative
// order. Reorder calls it after writing the listed positions so the table ends
// up a gap-free 0..n-1 permutation even when the submitted list was partial.
func resequenceRemainder(ctx context.Context, tx *sql.Tx, table, keyCol string, listed []string) error {
	query := `SELECT id FROM ` + table
	args := make([]interface{}, 0, len(listed))
	if len(listed) > 0 {
		query += ` WHERE ` + keyCol + ` NOT IN (?` + strings.Repeat(", ?", len(listed)-1) + `)`
		for _, v := range listed {
			args = append(args, v)
		}
	}
	query += ` ORDER BY display_order ASC, created_at ASC`

	rows, err := tx.QueryContext(ctx, query, args...)
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
			`UPDATE `+table+` SET display_order = ? WHERE id = ?`, len(listed)+idx, id); err != nil {
			return err
		}
	}
	return nil
}

// GalleryItem is one gallery entry supplied to ReplaceMedia.
type GalleryItem struct {
	URL     string
	Caption *string
}

// SchemeItem is one scheme entry supplied to ReplaceMedia.
type SchemeItem struct {
	Title string
	URL   string
}

// ReplaceMedia atomically swaps the full media set of a project: all existing
// media and scheme rows are deleted and the supplied arrays are reinserted.
// When hero is set, a FEATURE row is written at order 0 and gallery items are
// shifted to 1..n; the project's hero_image_url column is kept in sync. Any
// failure rolls the whole operation back, leaving the previous rows intact.
func (r *ProjectRepository) ReplaceMedia(ctx context.Context, projectID string, hero *string, gallery []GalleryItem, schemes []SchemeItem) error {
	return db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM project_media WHERE project_id = ?`, projectID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM project_schemes WHERE project_id = ?`, projectID); err != nil {
			return err
		}

		insertMedia := `
			INSERT INTO project_media (id, project_id, url, caption, kind, display_order, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`

		now := time.Now()
		order := 0
		if hero != nil && *hero != "" {
			if _, err := tx.ExecContext(ctx, insertMedia,
				uuid.New().String(), projectID, *hero, nil, models.MediaKindFeature, order, now); err != nil {
				return err
			}
			order++
		}
		for _, item := range gallery {
			if _, err := tx.ExecContext(ctx, insertMedia,
				uuid.New().String(), projectID, item.URL, item.Caption, models.MediaKindGallery, order, now); err != nil {
				return err
			}
			order++
		}

		for idx, item := range schemes {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO project_schemes (id, project_id, title, url, display_order, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, uuid.New().String(), projectID, item.Title, item.URL, idx, now); err != nil {
				return err
			}
		}

		var heroURL interface{}
		if hero != nil && *hero != "" {
			heroURL = *hero
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET hero_image_url = ?, updated_at = ? WHERE id = ?`,
			heroURL, now, projectID); err != nil {
			return err
		}

		return nil
	})
}
