// Package planner wraps the external trip-planning service. The pathfinding
// itself is out of process; this package owns the request shape, the result
// interpretation, and the failure taxonomy.
package planner

import (
	"context"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
)

// MaxWildBlocks bounds the overland walking distance considered by the
// pathfinder, matching the service default.
const MaxWildBlocks = 1500

// Filters is the settings-derived filter configuration passed with every
// plan request. It is built per call from the user's settings; there is no
// process-wide mutable filter state.
type Filters struct {
	Detail             bool `json:"detail"`
	HighSpeed          bool `json:"high_speed"`
	Boat               bool `json:"boat"`
	WalkingWild        bool `json:"walking_wild"`
	OnlyLRT            bool `json:"only_lrt"`
	MaxHour            int  `json:"max_hour"`
	MinHour            int  `json:"min_hour"`
	MaxTransfers       int  `json:"max_transfers"`
	PreferFast         bool `json:"prefer_fast"`
	PreferLessTransfer bool `json:"prefer_less_transfer"`
	Timezone           int  `json:"timezone"`
	MaxWildBlocks      int  `json:"max_wild_blocks"`
}

// FiltersFromSettings derives the filter configuration from a fully
// populated settings record.
func FiltersFromSettings(s *domain.Settings) Filters {
	return Filters{
		Detail:             s.Detail,
		HighSpeed:          s.HighSpeed,
		Boat:               s.Boat,
		WalkingWild:        s.WalkingWild,
		OnlyLRT:            s.OnlyLRT,
		MaxHour:            s.MaxHour,
		MinHour:            s.MinHourValue(),
		MaxTransfers:       s.MaxTransfersValue(),
		PreferFast:         s.PreferFastValue(),
		PreferLessTransfer: s.PreferLessTransferValue(),
		Timezone:           s.TimezoneValue(),
		MaxWildBlocks:      MaxWildBlocks,
	}
}

// Result is a successful plan: the rendered route diagram.
type Result struct {
	ImagePNG []byte
}

// Planner produces a route between two stations of the given map source.
//
// Failure classes, each surfaced as its own sentinel from internal/errors:
// ErrRouteNotFound (valid stations, no route under the filters),
// ErrStationUnresolved (unknown station names), ErrResultMalformed (success
// payload of the wrong shape). Anything else is a transport error.
type Planner interface {
	Plan(ctx context.Context, start, end, mapLink string, filters Filters) (*Result, error)
}
