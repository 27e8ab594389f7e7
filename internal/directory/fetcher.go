package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
)

const catalogPath = "/mtr/api/map/stations-and-routes?dimension=0"

// Fetcher downloads the station catalog of a map source. Station-info and
// search commands always ask the fetcher first; a short-lived per-link cache
// keeps repeated lookups from hammering the map server while still picking
// up new stations quickly.
type Fetcher struct {
	client   *http.Client
	log      *slog.Logger
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	dir       *Directory
	fetchedAt time.Time
}

// NewFetcher creates a Fetcher with the given request timeout and cache TTL.
func NewFetcher(timeout, cacheTTL time.Duration, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		log:      log,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// Fetch returns the directory for the map source, from cache when fresh.
func (f *Fetcher) Fetch(ctx context.Context, mapLink string) (*Directory, error) {
	link := strings.TrimRight(mapLink, "/")

	f.mu.Lock()
	entry, ok := f.cache[link]
	f.mu.Unlock()

	if ok && f.cacheTTL > 0 && f.now().Sub(entry.fetchedAt) < f.cacheTTL {
		return entry.dir, nil
	}

	dir, err := f.fetch(ctx, link)
	if err != nil {
		f.log.Error("station directory fetch failed", slog.String("map_link", link), slog.Any("error", err))
		return nil, apperrors.NewDirectoryError(err)
	}

	f.mu.Lock()
	f.cache[link] = cacheEntry{dir: dir, fetchedAt: f.now()}
	f.mu.Unlock()

	f.log.Info("station directory updated",
		slog.String("map_link", link),
		slog.Int("stations", len(dir.stations)),
		slog.Int("routes", len(dir.routes)),
	)

	return dir, nil
}

type catalogPayload struct {
	Stations      map[string]Station  `json:"stations"`
	Routes        map[string]Route    `json:"routes"`
	StationRoutes map[string][]string `json:"station_routes"`
}

func (f *Fetcher) fetch(ctx context.Context, link string) (*Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link+catalogPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("map server responded with status %d", resp.StatusCode)
	}

	var payload catalogPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode station catalog: %w", err)
	}

	dir := &Directory{
		stations:      make(map[string]Station, len(payload.Stations)),
		routes:        make(map[string]Route, len(payload.Routes)),
		stationRoutes: payload.StationRoutes,
	}
	for id, s := range payload.Stations {
		s.ID = id
		dir.stations[id] = s
	}
	for id, r := range payload.Routes {
		r.ID = id
		dir.routes[id] = r
	}

	return dir, nil
}
