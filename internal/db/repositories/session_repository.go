// session_repository.go implements admin account and login session storage.
// Session tokens are opaque random hex strings generated by the auth package;
// this layer only persists and expires them.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

// SessionRepository handles admin user and session database operations.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetUserByLogin returns the admin account for login, or (nil, nil).
func (r *SessionRepository) GetUserByLogin(ctx context.Context, login string) (*models.AdminUser, error) {
	u := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, login, password_hash, created_at
		FROM admin_users
		WHERE login = ?
	`, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByID returns the admin account for id, or (nil, nil).
func (r *SessionRepository) GetUserByID(ctx context.Context, id string) (*models.AdminUser, error) {
	u := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, login, password_hash, created_at
		FROM admin_users
		WHERE id = ?
	`, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new admin account. Returns ErrLoginTaken when the
// login already exists.
func (r *SessionRepository) CreateUser(ctx context.Context, login, passwordHash string) (*models.AdminUser, error) {
	existing, err := r.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	u := &models.AdminUser{
		ID:           uuid.New().String(),
		Login:        login,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admin_users (id, login, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Login, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword replaces the stored hash for a user id.
func (r *SessionRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE admin_users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	return err
}

// CreateSession persists a new session token for a user.
func (r *SessionRepository) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) (*models.AdminSession, error) {
	s := &models.AdminSession{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession returns the session for token, or (nil, nil). Expiry is checked
// by the caller against its own clock; an expired row is still returned.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (*models.AdminSession, error) {
	s := &models.AdminSession{}
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM admin_sessions
		WHERE token = ?
	`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSession removes one session (logout).
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE token = ?`, token)
	return err
}

// DeleteExpired purges sessions past their expiry and returns how many rows
// were removed. Called by the auth middleware opportunistically and by the
// session reaper job on its interval.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
