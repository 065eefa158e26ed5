package models

import "time"

// Session is the server-side replacement for the browser-held credentials:
// the upstream access/refresh tokens (sealed at rest) plus a denormalized
// copy of the user, keyed by the cookie value.
type Session struct {
	ID            uint   `gorm:"primaryKey"`
	SessionID     string `gorm:"uniqueIndex"`
	AccessSealed  string
	RefreshSealed string
	UserJSON      string
	ExpiresAt     time.Time `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
