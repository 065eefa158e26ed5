package models

import "time"

const (
	NimActive   = "active"
	NimInactive = "inactive"
)

// NimEntry is one row of the registration allowlist managed by admins on the
// user service. Only NIMs with an active entry may register.
type NimEntry struct {
	ID        FlexibleString `json:"id"`
	NIM       string         `json:"nim"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (n NimEntry) Active() bool {
	return n.Status == NimActive
}
