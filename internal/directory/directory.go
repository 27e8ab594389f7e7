// Package directory fetches the station and route catalog of a map source
// and answers station-info and keyword-search lookups over it.
package directory

import (
	"sort"
	"strings"
)

// Station is one stop on the map.
type Station struct {
	ID          string   `json:"-"`
	Name        string   `json:"name"`
	Code        string   `json:"station"`
	Connections []string `json:"connections"`
}

// Route is one line on the map.
type Route struct {
	ID     string `json:"-"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Number string `json:"number"`
}

// Directory is an immutable snapshot of one map source's catalog.
type Directory struct {
	stations      map[string]Station
	routes        map[string]Route
	stationRoutes map[string][]string
}

// DisplayName renders a raw multi-language station or route name. The map
// source separates language variants with a pipe.
func DisplayName(raw string) string {
	return strings.ReplaceAll(raw, "|", " / ")
}

// Station returns the station with the given id.
func (d *Directory) Station(id string) (Station, bool) {
	s, ok := d.stations[id]
	return s, ok
}

// Route returns the route with the given id.
func (d *Directory) Route(id string) (Route, bool) {
	r, ok := d.routes[id]
	return r, ok
}

// StationByName resolves a user-entered station name. It tries an exact
// match over the full raw name first, then over each pipe-separated
// language segment, case-insensitively.
func (d *Directory) StationByName(name string) (Station, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Station{}, false
	}

	for _, s := range d.stations {
		if strings.ToLower(s.Name) == needle {
			return s, true
		}
	}

	for _, s := range d.stations {
		for _, segment := range strings.Split(s.Name, "|") {
			if strings.ToLower(strings.TrimSpace(segment)) == needle {
				return s, true
			}
		}
	}

	return Station{}, false
}

// RoutesServing returns the routes that stop at the station, in stable
// name order.
func (d *Directory) RoutesServing(stationID string) []Route {
	ids := d.stationRoutes[stationID]
	routes := make([]Route, 0, len(ids))
	for _, id := range ids {
		if r, ok := d.routes[id]; ok {
			routes = append(routes, r)
		}
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

// SearchResult holds the stations and routes matching a keyword.
type SearchResult struct {
	Stations []Station
	Routes   []Route
}

// Search finds stations and routes whose names contain the keyword,
// case-insensitively, in stable name order.
func (d *Directory) Search(keyword string) SearchResult {
	needle := strings.ToLower(strings.TrimSpace(keyword))

	var result SearchResult
	if needle == "" {
		return result
	}

	for _, s := range d.stations {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			result.Stations = append(result.Stations, s)
		}
	}
	for _, r := range d.routes {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			result.Routes = append(result.Routes, r)
		}
	}

	sort.Slice(result.Stations, func(i, j int) bool { return result.Stations[i].Name < result.Stations[j].Name })
	sort.Slice(result.Routes, func(i, j int) bool { return result.Routes[i].Name < result.Routes[j].Name })

	return result
}
