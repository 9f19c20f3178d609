package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/panoplace/internal/core/domain"
)

// reverseZoom is the Nominatim detail level: 18 resolves to building or
// street granularity, which is what the overlay displays.
const reverseZoom = 18

// Client implements ports.Geocoder against a Nominatim-compatible
// reverse-geocoding endpoint.
//
// One GET per call, no internal retries: the pipeline's failure accounting
// counts calls, and a retry loop here would hide failures from it.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// New creates a reverse-geocoding client. Nominatim's usage policy
// requires an identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string          `json:"display_name"`
	Address     *domain.Address `json:"address"`
}

// Reverse resolves a coordinate to a place description. A transport error
// or non-200 status is returned as an error; a 200 with missing fields is
// a valid (thin) result.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*domain.ReverseResult, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", strconv.Itoa(reverseZoom))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode: HTTP %d", resp.StatusCode)
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &domain.ReverseResult{
		DisplayName: decoded.DisplayName,
		Address:     decoded.Address,
	}, nil
}
