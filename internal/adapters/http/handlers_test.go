package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	httpadapter "github.com/samirrijal/panoplace/internal/adapters/http"
	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/core/usecases"
)

// --- Mocks ---

type mockGeocoder struct {
	reverseFn func(ctx context.Context, lat, lng float64) (*domain.ReverseResult, error)
	calls     int
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lng float64) (*domain.ReverseResult, error) {
	m.calls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, lat, lng)
	}
	return &domain.ReverseResult{Address: &domain.Address{Country: "France", City: "Paris"}}, nil
}

type mockHistory struct {
	listFn func(ctx context.Context, limit int) ([]domain.Resolution, error)
}

func (m *mockHistory) Insert(ctx context.Context, r *domain.Resolution) error { return nil }

func (m *mockHistory) ListRecent(ctx context.Context, limit int) ([]domain.Resolution, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func newTestApp(deps *httpadapter.Dependencies) *fiber.App {
	app := fiber.New()
	httpadapter.SetupRoutes(app, deps)
	return app
}

func doGet(t *testing.T, app *fiber.App, path string) (*nethttp.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}

// --- Tests ---

func TestDisplayHandler_DefaultWithoutMirror(t *testing.T) {
	app := newTestApp(&httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: &mockGeocoder{},
	})

	resp, body := doGet(t, app, "/v1/display")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var d domain.Display
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Status != domain.StatusDisconnected {
		t.Errorf("status = %q, want disconnected default", d.Status)
	}
	if d.Text != domain.TextUnavailable {
		t.Errorf("text = %q", d.Text)
	}
}

func TestPlaceHandler_NetworkThenCache(t *testing.T) {
	g := &mockGeocoder{}
	deps := &httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: g,
	}
	app := newTestApp(deps)

	resp, body := doGet(t, app, "/v1/place?lat=48.8566&lng=2.3522")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var got struct {
		Place  string `json:"place"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Place != "France, Paris" || got.Source != domain.SourceNetwork {
		t.Errorf("got %+v", got)
	}

	// ~14 m away: served from cache.
	resp, body = doGet(t, app, "/v1/place?lat=48.8567&lng=2.3523")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Source != domain.SourceCache {
		t.Errorf("source = %q, want cache", got.Source)
	}
	if g.calls != 1 {
		t.Errorf("geocoder calls = %d, want 1", g.calls)
	}
}

func TestPlaceHandler_Validation(t *testing.T) {
	app := newTestApp(&httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: &mockGeocoder{},
	})

	resp, _ := doGet(t, app, "/v1/place?lat=48.0")
	if resp.StatusCode != 400 {
		t.Errorf("missing lng: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doGet(t, app, "/v1/place?lat=91.0&lng=0.0")
	if resp.StatusCode != 400 {
		t.Errorf("out of range: status = %d, want 400", resp.StatusCode)
	}
}

func TestPlaceHandler_GeocoderDown(t *testing.T) {
	g := &mockGeocoder{
		reverseFn: func(ctx context.Context, lat, lng float64) (*domain.ReverseResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	app := newTestApp(&httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: g,
	})

	resp, _ := doGet(t, app, "/v1/place?lat=48.0&lng=2.0")
	if resp.StatusCode != 503 {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHistoryHandler(t *testing.T) {
	history := &mockHistory{
		listFn: func(ctx context.Context, limit int) ([]domain.Resolution, error) {
			if limit != 50 {
				t.Errorf("default limit = %d, want 50", limit)
			}
			return []domain.Resolution{
				{Place: "France, Paris", Source: domain.SourceNetwork},
			}, nil
		},
	}
	app := newTestApp(&httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: &mockGeocoder{},
		History:  history,
	})

	resp, body := doGet(t, app, "/v1/history")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var items []domain.Resolution
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 || items[0].Place != "France, Paris" {
		t.Errorf("items = %+v", items)
	}
}

func TestHistoryHandler_NotConfigured(t *testing.T) {
	app := newTestApp(&httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: &mockGeocoder{},
	})

	resp, _ := doGet(t, app, "/v1/history")
	if resp.StatusCode != 503 {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHealthHandler(t *testing.T) {
	app := newTestApp(&httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: &mockGeocoder{},
	})

	resp, body := doGet(t, app, "/v1/health")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["status"] != "healthy" {
		t.Errorf("status = %v", m["status"])
	}
}

func TestGraphQL_PlaceQuery(t *testing.T) {
	deps := &httpadapter.Dependencies{
		Places:   usecases.NewPlaceCache(nil),
		Geocoder: &mockGeocoder{},
	}
	app := newTestApp(deps)

	q := `{"query":"{ place(lat: 48.8566, lng: 2.3522) { place source } }"}`
	req := httptest.NewRequest(nethttp.MethodPost, "/graphql", bytes.NewBufferString(q))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("graphql request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var result struct {
		Data struct {
			Place struct {
				Place  string `json:"place"`
				Source string `json:"source"`
			} `json:"place"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Place.Place != "France, Paris" || result.Data.Place.Source != "network" {
		t.Errorf("data = %+v", result.Data.Place)
	}
}
