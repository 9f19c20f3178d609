package domain_test

import (
	"testing"

	"github.com/samirrijal/panoplace/internal/core/domain"
)

func TestReverseResult_PlaceName(t *testing.T) {
	tests := []struct {
		name   string
		result domain.ReverseResult
		want   string
	}{
		{
			name:   "country and city",
			result: domain.ReverseResult{Address: &domain.Address{Country: "Italy", City: "Rome"}},
			want:   "Italy, Rome",
		},
		{
			name:   "country only",
			result: domain.ReverseResult{Address: &domain.Address{Country: "Italy"}},
			want:   "Italy",
		},
		{
			name:   "town used when no city",
			result: domain.ReverseResult{Address: &domain.Address{Country: "Spain", Town: "Getxo"}},
			want:   "Spain, Getxo",
		},
		{
			name:   "village used when no city or town",
			result: domain.ReverseResult{Address: &domain.Address{Country: "France", Village: "Eguisheim"}},
			want:   "France, Eguisheim",
		},
		{
			name:   "city preferred over town and village",
			result: domain.ReverseResult{Address: &domain.Address{Country: "Spain", City: "Bilbao", Town: "X", Village: "Y"}},
			want:   "Spain, Bilbao",
		},
		{
			name:   "fallback to display name without structured address",
			result: domain.ReverseResult{DisplayName: "Somewhere, Atlantic Ocean"},
			want:   "Somewhere, Atlantic Ocean",
		},
		{
			name:   "empty address falls back to display name",
			result: domain.ReverseResult{DisplayName: "Raw name", Address: &domain.Address{Road: "Main St"}},
			want:   "Raw name",
		},
		{
			name:   "nothing usable",
			result: domain.ReverseResult{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.PlaceName(); got != tt.want {
				t.Errorf("PlaceName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPlaceholderName(t *testing.T) {
	for _, name := range []string{"", "Unknown", "No details found"} {
		if !domain.IsPlaceholderName(name) {
			t.Errorf("expected %q to be a placeholder", name)
		}
	}
	if domain.IsPlaceholderName("France, Paris") {
		t.Error("real place name flagged as placeholder")
	}
}

func TestCoordinate_Valid(t *testing.T) {
	valid := []domain.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: -90, Lng: 180},
		{Lat: 48.8566, Lng: 2.3522},
	}
	for _, c := range valid {
		if !c.Valid() {
			t.Errorf("expected %+v to be valid", c)
		}
	}

	invalid := []domain.Coordinate{
		{Lat: 91, Lng: 0},
		{Lat: 0, Lng: -181},
	}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("expected %+v to be invalid", c)
		}
	}
}
