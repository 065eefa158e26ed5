package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the session-held copy of the account owned by the user service.
// IsAdmin is derived from Role and must be recomputed after every mutation.
type User struct {
	ID       FlexibleString `json:"id"`
	Username string         `json:"username"`
	NIM      string         `json:"nim"`
	Role     string         `json:"role"`
	IsAdmin  bool           `json:"isAdmin"`
}

// Normalize keeps the derived IsAdmin flag consistent with Role.
func (u *User) Normalize() {
	u.IsAdmin = u.Role == RoleAdmin
}

// UserRecord is the admin-view row returned by GET /api/users. It is joined
// client-side against letters via Surat.IDPengirim.
type UserRecord struct {
	ID        FlexibleString `json:"id"`
	Username  string         `json:"username"`
	NIM       string         `json:"nim"`
	Role      string         `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}
