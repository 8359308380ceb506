package models

import "time"

// AdminUser is a backend administrator account. Only the bcrypt hash of the
// password is ever stored.
type AdminUser struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminSession is a live login session: a random 32-byte hex token with an
// expiry timestamp. Expired rows are purged both on request (by the auth
// middleware) and periodically by the session reaper job.
type AdminSession struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *AdminSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
