package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/masterskaya-studio/site-backend/internal/db"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

// TeamRepository handles team member database operations.
type TeamRepository struct {
	db *sql.DB
}

// NewTeamRepository creates a new TeamRepository.
func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `id, name, role, label, image_url, mobile_image_url, is_featured,
	display_order, created_at, updated_at`

func scanTeamMember(row interface{ Scan(...interface{}) error }) (*models.TeamMember, error) {
	m := &models.TeamMember{}
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Role,
		&m.Label,
		&m.ImageURL,
		&m.MobileImageURL,
		&m.IsFeatured,
		&m.Order,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListAll retrieves every team member ordered by display position.
func (r *TeamRepository) ListAll(ctx context.Context) ([]*models.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+teamColumns+`
		FROM team_members
		ORDER BY display_order ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetByID returns one team member, or (nil, nil) when the id is unknown.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.TeamMember, error) {
	m, err := scanTeamMember(r.db.QueryRowContext(ctx, `
		SELECT `+teamColumns+`
		FROM team_members
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new team member at the end of the display order.
func (r *TeamRepository) Create(ctx context.Context, m *models.TeamMember) error {
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order) + 1, 0) FROM team_members`).Scan(&m.Order)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO team_members (id, name, role, label, image_url, mobile_image_url,
			is_featured, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Role, m.Label, m.ImageURL, m.MobileImageURL,
		m.IsFeatured, m.Order, m.CreatedAt, m.UpdatedAt)
	return err
}

// TeamMemberUpdate is a field-presence struct for partial team member updates.
// A nil field is left untouched; an empty string clears a nullable column.
type TeamMemberUpdate struct {
	Name           *string
	Role           *string
	Label          *string
	ImageURL       *string
	MobileImageURL *string
	IsFeatured     *bool
}

// Update applies a partial update. Returns (nil, nil) when the id is unknown.
func (r *TeamRepository) Update(ctx context.Context, id string, upd *TeamMemberUpdate) (*models.TeamMember, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	if upd.Name != nil && *upd.Name != "" {
		m.Name = *upd.Name
	}
	applyOptional(&m.Role, upd.Role)
	applyOptional(&m.Label, upd.Label)
	applyOptional(&m.ImageURL, upd.ImageURL)
	applyOptional(&m.MobileImageURL, upd.MobileImageURL)
	if upd.IsFeatured != nil {
		m.IsFeatured = *upd.IsFeatured
	}
	m.UpdatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, `
		UPDATE team_members
		SET name = ?, role = ?, label = ?, image_url = ?, mobile_image_url = ?,
			is_featured = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.Role, m.Label, m.ImageURL, m.MobileImageURL,
		m.IsFeatured, m.UpdatedAt, m.ID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a team member and closes the gap in the display order.
// Returns false when the id is unknown.
func (r *TeamRepository) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
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
		return resequenceTable(ctx, tx, "team_members")
	})
	return found, err
}

// Reorder persists a new display order from the position of each id in the
// supplied list. Fails with ErrUnknownSlug when an id does not exist.
func (r *TeamRepository) Reorder(ctx context.Context, ids []string) error {
	return db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		for idx, id := range ids {
			res, err := tx.ExecContext(ctx,
				`UPDATE team_members SET display_order = ? WHERE id = ?`, idx, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				var one int
				err := tx.QueryRowContext(ctx,
					`SELECT 1 FROM team_members WHERE id = ?`, id).Scan(&one)
				if err == sql.ErrNoRows {
					return fmt.Errorf("%w: %s", ErrUnknownSlug, id)
				}
				if err != nil {
					return err
				}
			}
		}
		// Same guarantee as the project reorder: a partial id list may not
		// leave stale order values behind.
		return resequenceRemainder(ctx, tx, "team_members", "id", ids)
	})
}
