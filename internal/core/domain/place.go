package domain

import (
	"strings"
	"time"
)

// Address is the structured address block of a reverse-geocoding response.
type Address struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Town    string `json:"town,omitempty"`
	Village string `json:"village,omitempty"`
	Road    string `json:"road,omitempty"`
	State   string `json:"state,omitempty"`
	Region  string `json:"region,omitempty"`
}

// Locality returns the first of city, town, village that is present.
func (a Address) Locality() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	case a.Village != "":
		return a.Village
	}
	return ""
}

// ReverseResult is the parsed payload of one reverse-geocoding call.
// Address is nil when the service returned no structured address.
type ReverseResult struct {
	DisplayName string
	Address     *Address
}

// PlaceName composes the human-readable name: "{country}, {locality}",
// country alone when no locality is present, falling back to the raw
// display name when there is no structured address at all.
func (r ReverseResult) PlaceName() string {
	if r.Address != nil {
		country := strings.TrimSpace(r.Address.Country)
		locality := strings.TrimSpace(r.Address.Locality())
		switch {
		case country != "" && locality != "":
			return country + ", " + locality
		case country != "":
			return country
		}
	}
	return strings.TrimSpace(r.DisplayName)
}

// Placeholder names some services return instead of an empty field.
// They are displayable but must never be cached as a resolved place.
func IsPlaceholderName(name string) bool {
	switch name {
	case "", "Unknown", "No details found":
		return true
	}
	return false
}

// PlaceEntry is one cached resolution: the source coordinate, the resolved
// name, and when it was recorded. Entries are overwritten, never evicted.
type PlaceEntry struct {
	Coordinate Coordinate `json:"coordinate"`
	Name       string     `json:"name"`
	RecordedAt time.Time  `json:"recorded_at"`
}
