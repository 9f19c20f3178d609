package domain

import "time"

// Resolution sources.
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
)

// Resolution is one successful place resolution, recorded for history.
type Resolution struct {
	Time       time.Time  `json:"time"`
	Coordinate Coordinate `json:"coordinate"`
	Place      string     `json:"place"`
	Source     string     `json:"source"` // "cache" or "network"
}
