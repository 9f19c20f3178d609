package domain

import "time"

// Status is the externally visible health signal rendered by the
// presentation layer next to the place name.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// TextUnavailable is rendered when a resolution fails and no previously
// resolved place exists to fall back on.
const TextUnavailable = "Location unavailable"

// StaleSuffix annotates a last-known place shown during failures.
const StaleSuffix = " (last known)"

// Display is the renderable (text, status) pair produced after every
// completed resolution.
type Display struct {
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
