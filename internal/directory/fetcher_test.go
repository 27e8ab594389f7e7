package directory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
)

var testCatalog = catalogPayload{
	Stations: map[string]Station{
		"st1": {Name: "中环站|Central", Code: "CEN", Connections: []string{"st2"}},
		"st2": {Name: "北湾站|North Bay", Code: "NB", Connections: []string{"st1"}},
		"st3": {Name: "机场站|Airport", Code: "APT"},
	},
	Routes: map[string]Route{
		"r1": {Name: "港岛线|Island Line", Type: "train_normal", Number: "1"},
		"r2": {Name: "机场快线|Airport Express", Type: "train_high_speed", Number: "A"},
	},
	StationRoutes: map[string][]string{
		"st1": {"r2", "r1"},
		"st3": {"r2"},
	},
}

func catalogServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		assert.Equal(t, "/mtr/api/map/stations-and-routes", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("dimension"))
		_ = json.NewEncoder(w).Encode(testCatalog)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetcher_Fetch(t *testing.T) {
	srv := catalogServer(t, nil)
	f := NewFetcher(time.Second, time.Minute, discardLogger())

	dir, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	s, ok := dir.Station("st1")
	require.True(t, ok)
	assert.Equal(t, "st1", s.ID)
	assert.Equal(t, "CEN", s.Code)

	r, ok := dir.Route("r2")
	require.True(t, ok)
	assert.Equal(t, "train_high_speed", r.Type)
}

func TestFetcher_CacheExpiry(t *testing.T) {
	hits := 0
	srv := catalogServer(t, &hits)

	f := NewFetcher(time.Second, time.Minute, discardLogger())
	now := time.Now()
	f.now = func() time.Time { return now }

	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "fresh cache entry must be reused")

	now = now.Add(2 * time.Minute)
	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "expired entry must be refetched")
}

func TestFetcher_TrailingSlashSharesCacheEntry(t *testing.T) {
	hits := 0
	srv := catalogServer(t, &hits)
	f := NewFetcher(time.Second, time.Minute, discardLogger())

	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(time.Second, time.Minute, discardLogger())
	_, err := f.Fetch(context.Background(), srv.URL)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E310", appErr.Code)
}

func buildTestDirectory(t *testing.T) *Directory {
	t.Helper()
	srv := catalogServer(t, nil)
	f := NewFetcher(time.Second, 0, discardLogger())
	dir, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	return dir
}

func TestDirectory_StationByName(t *testing.T) {
	dir := buildTestDirectory(t)

	testCases := []struct {
		name   string
		query  string
		wantID string
		found  bool
	}{
		{"full raw name", "中环站|Central", "st1", true},
		{"english segment", "Central", "st1", true},
		{"chinese segment", "北湾站", "st2", true},
		{"case insensitive", "aIrPoRt", "st3", true},
		{"surrounding spaces", "  Central  ", "st1", true},
		{"unknown", "Nowhere", "", false},
		{"empty", "   ", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := dir.StationByName(tc.query)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.wantID, s.ID)
			}
		})
	}
}

func TestDirectory_RoutesServing(t *testing.T) {
	dir := buildTestDirectory(t)

	routes := dir.RoutesServing("st1")
	require.Len(t, routes, 2)
	assert.Equal(t, "r2", routes[0].ID, "routes must be sorted by name")
	assert.Equal(t, "r1", routes[1].ID)

	assert.Empty(t, dir.RoutesServing("st2"))
}

func TestDirectory_Search(t *testing.T) {
	dir := buildTestDirectory(t)

	result := dir.Search("airport")
	require.Len(t, result.Stations, 1)
	assert.Equal(t, "st3", result.Stations[0].ID)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "r2", result.Routes[0].ID)

	result = dir.Search("线")
	assert.Empty(t, result.Stations)
	assert.Len(t, result.Routes, 2)

	assert.Empty(t, dir.Search("  ").Stations)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "中环站 / Central", DisplayName("中环站|Central"))
	assert.Equal(t, "Plain", DisplayName("Plain"))
}
