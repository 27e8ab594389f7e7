package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/directory"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
)

// searchResultLimit caps how many stations and routes a /search reply lists
// per group before collapsing the rest into a count.
const searchResultLimit = 10

// routeTypeEmoji maps a route's transport type to the marker shown in lists.
var routeTypeEmoji = map[string]string{
	"train_normal":     "🚂",
	"train_high_speed": "🚄",
	"train_light_rail": "🚃",
	"boat_normal":      "⛴",
	"boat_high_speed":  "🚤",
	"boat_light_rail":  "🚥",
	"cable_car_normal": "🚠",
	"airplane_normal":  "✈️",
}

func emojiFor(routeType string) string {
	if e, ok := routeTypeEmoji[routeType]; ok {
		return e
	}
	return "🚂"
}

// NewStationHandler returns the /station handler showing one station's
// details, the routes serving it, and its transfer connections.
func NewStationHandler(
	repo repository.ProfileRepository,
	fetcher *directory.Fetcher,
	tr i18n.Translator,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		name := strings.TrimSpace(strings.Join(c.Args(), " "))
		if name == "" {
			return c.Send(tr.T("station.usage"))
		}

		userID := c.Sender().ID
		current, err := repo.GetSettings(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		if err := c.Send(tr.T("station.updating")); err != nil {
			return err
		}

		dir, err := fetcher.Fetch(context.Background(), current.MapLinkValue())
		if err != nil {
			return err
		}

		station, ok := dir.StationByName(name)
		if !ok {
			return c.Send(fmt.Sprintf(tr.T("station.not_found"), name))
		}

		var sb strings.Builder
		sb.WriteString(tr.T("station.header"))
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(tr.T("station.name"), directory.DisplayName(station.Name)))
		sb.WriteString("\n")
		if station.Code != "" {
			sb.WriteString(fmt.Sprintf(tr.T("station.code"), station.Code))
			sb.WriteString("\n")
		}

		if routes := dir.RoutesServing(station.ID); len(routes) > 0 {
			sb.WriteString("\n")
			sb.WriteString(tr.T("station.routes_header"))
			sb.WriteString("\n")
			for _, r := range routes {
				sb.WriteString(fmt.Sprintf("%s %s", emojiFor(r.Type), directory.DisplayName(r.Name)))
				if r.Number != "" {
					sb.WriteString(fmt.Sprintf(" (%s)", r.Number))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		if len(station.Connections) == 0 {
			sb.WriteString(tr.T("station.connections_none"))
		} else {
			sb.WriteString(tr.T("station.connections_header"))
			sb.WriteString("\n")
			for _, id := range station.Connections {
				if conn, ok := dir.Station(id); ok {
					sb.WriteString(fmt.Sprintf("• %s\n", directory.DisplayName(conn.Name)))
				}
			}
		}

		return c.Send(sb.String())
	}
}

// NewSearchHandler returns the /search handler matching stations and routes
// by keyword.
func NewSearchHandler(
	repo repository.ProfileRepository,
	fetcher *directory.Fetcher,
	tr i18n.Translator,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		keyword := strings.TrimSpace(strings.Join(c.Args(), " "))
		if keyword == "" {
			return c.Send(tr.T("search.usage"))
		}

		userID := c.Sender().ID
		current, err := repo.GetSettings(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		if err := c.Send(tr.T("station.updating")); err != nil {
			return err
		}

		dir, err := fetcher.Fetch(context.Background(), current.MapLinkValue())
		if err != nil {
			return err
		}

		result := dir.Search(keyword)
		if len(result.Stations) == 0 && len(result.Routes) == 0 {
			return c.Send(fmt.Sprintf(tr.T("search.no_results"), keyword))
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf(tr.T("search.header"), keyword))
		sb.WriteString("\n")

		if len(result.Stations) > 0 {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf(tr.T("search.stations_header"), len(result.Stations)))
			sb.WriteString("\n")
			for i, s := range result.Stations {
				if i == searchResultLimit {
					sb.WriteString(fmt.Sprintf(tr.T("search.stations_more"), len(result.Stations)-searchResultLimit))
					sb.WriteString("\n")
					break
				}
				sb.WriteString(fmt.Sprintf("🚉 %s\n", directory.DisplayName(s.Name)))
			}
		}

		if len(result.Routes) > 0 {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf(tr.T("search.routes_header"), len(result.Routes)))
			sb.WriteString("\n")
			for i, r := range result.Routes {
				if i == searchResultLimit {
					sb.WriteString(fmt.Sprintf(tr.T("search.routes_more"), len(result.Routes)-searchResultLimit))
					sb.WriteString("\n")
					break
				}
				sb.WriteString(fmt.Sprintf("%s %s\n", emojiFor(r.Type), directory.DisplayName(r.Name)))
			}
		}

		return c.Send(sb.String())
	}
}
