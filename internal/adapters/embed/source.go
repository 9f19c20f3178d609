package embed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/panoplace/internal/core/domain"
)

// iframeSrc matches the src attribute of every iframe on the page. The
// embed is identified by matching its URL against a pattern, never by the
// element's own id: the hosting page regenerates markup ids freely, and
// earlier id-based identification broke on every viewer update.
var iframeSrc = regexp.MustCompile(`(?is)<iframe\b[^>]*?\bsrc\s*=\s*["']([^"']+)["']`)

// Source implements ports.PositionSource by scraping the viewer page for
// a panorama embed iframe and parsing its "location" query parameter.
type Source struct {
	pageURL string
	pattern string
	client  *http.Client

	mu      sync.Mutex
	last    domain.Coordinate
	hasLast bool
}

// New creates a position source. pattern is a substring the embed URL must
// contain (e.g. "panorama").
func New(pageURL, pattern string, timeout time.Duration) *Source {
	return &Source{
		pageURL: pageURL,
		pattern: pattern,
		client:  &http.Client{Timeout: timeout},
	}
}

// Current fetches the page and extracts the coordinate from the first
// iframe whose src matches the embed pattern and carries a parsable
// "location=lat,lng" parameter. Returns domain.ErrNoPosition when no such
// element exists or the coordinate is unusable.
func (s *Source) Current(ctx context.Context) (domain.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("fetch viewer page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("fetch viewer page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("read viewer page: %w", err)
	}

	for _, m := range iframeSrc.FindAllStringSubmatch(string(body), -1) {
		src := htmlUnescape(m[1])
		if !strings.Contains(src, s.pattern) {
			continue
		}
		c, ok := parseLocation(src)
		if !ok {
			continue
		}
		s.mu.Lock()
		s.last = c
		s.hasLast = true
		s.mu.Unlock()
		return c, nil
	}

	return domain.Coordinate{}, domain.ErrNoPosition
}

// Last returns the most recently parsed coordinate, if any.
func (s *Source) Last() (domain.Coordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// parseLocation extracts the "location=lat,lng" query parameter from an
// embed URL.
func parseLocation(src string) (domain.Coordinate, bool) {
	u, err := url.Parse(src)
	if err != nil {
		return domain.Coordinate{}, false
	}

	loc := u.Query().Get("location")
	if loc == "" {
		return domain.Coordinate{}, false
	}

	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return domain.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Coordinate{}, false
	}

	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinate{}, false
	}
	return c, true
}

// htmlUnescape handles the entities that actually occur in attribute
// values of embed URLs.
func htmlUnescape(s string) string {
	r := strings.NewReplacer("&amp;", "&", "&#38;", "&", "&quot;", `"`)
	return r.Replace(s)
}
