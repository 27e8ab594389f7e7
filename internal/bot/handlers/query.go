package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/metrics"
)

// NewQueryStartHandler returns the /path entry handler. It opens the query
// flow, replacing any in-flight session for the user.
func NewQueryStartHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		sessions.Begin(userID, session.FlowQuery, session.StateAwaitingStartStation)
		log.Info("query flow started", slog.Int64("user_id", userID))

		return c.Send(tr.T("query.prompt_start"))
	}
}

// NewQueryStartStationHandler consumes the start station reply and asks for
// the end station. Only the session scratch changes here.
func NewQueryStartStationHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		start := c.Text()

		err := sessions.Advance(userID, session.StateAwaitingEndStation, func(s *session.Scratch) {
			s.Start = start
		})
		if err != nil {
			log.Error("failed to advance query flow", slog.Int64("user_id", userID), slog.Any("error", err))
			sessions.Clear(userID)
			return apperrors.NewSessionError("query flow transition rejected")
		}

		log.Info("query start station collected", slog.Int64("user_id", userID), slog.String("start", start))
		return c.Send(tr.T("query.prompt_end"))
	}
}

// NewQueryEndStationHandler finishes the query flow: it closes the session,
// invokes the planner with the user's settings, and records history on
// success. This is the only step with side effects.
func NewQueryEndStationHandler(
	sessions *session.Manager,
	repo repository.ProfileRepository,
	pl planner.Planner,
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

		userID := c.Sender().ID
		end := c.Text()

		sess, err := sessions.Get(userID)
		if err != nil {
			return apperrors.NewSessionError("query flow has no open session")
		}
		start := sess.Scratch.Start

		// The session ends before the planner call so the user is never
		// stuck mid-flow, whatever the outcome.
		sessions.Clear(userID)

		if err := c.Send(tr.T("query.planning")); err != nil {
			return err
		}

		return ExecuteQuery(c, repo, pl, tr, log, userID, start, end)
	}
}

// ExecuteQuery runs one route query end to end: settings lookup, planner
// call, per-class failure messages, history recording, photo reply. It is
// shared by the query flow, the history re-run buttons, and shortcut runs.
func ExecuteQuery(
	c telebot.Context,
	repo repository.ProfileRepository,
	pl planner.Planner,
	tr i18n.Translator,
	log *slog.Logger,
	userID int64,
	start, end string,
) error {
	if log == nil {
		log = slog.Default()
	}

	settings, err := repo.GetSettings(userID)
	if err != nil {
		return apperrors.NewStoreError(err)
	}

	log.Info("planning route",
		slog.Int64("user_id", userID),
		slog.String("start", start),
		slog.String("end", end),
		slog.String("map_link", settings.MapLinkValue()),
	)

	result, err := pl.Plan(context.Background(), start, end, settings.MapLinkValue(), planner.FiltersFromSettings(settings))
	switch {
	case err == nil:
		// fall through to the success path below
	case errors.Is(err, apperrors.ErrRouteNotFound):
		metrics.RecordPlannerRequest("route_not_found")
		log.Warn("no route found", slog.Int64("user_id", userID), slog.String("start", start), slog.String("end", end))
		return c.Send(tr.T("query.err_not_found"))
	case errors.Is(err, apperrors.ErrStationUnresolved):
		metrics.RecordPlannerRequest("station_unresolved")
		log.Warn("station name unresolved", slog.Int64("user_id", userID), slog.String("start", start), slog.String("end", end))
		return c.Send(tr.T("query.err_station"))
	case errors.Is(err, apperrors.ErrResultMalformed):
		metrics.RecordPlannerRequest("malformed")
		log.Error("planner result malformed", slog.Int64("user_id", userID), slog.Any("error", err))
		return c.Send(tr.T("query.err_malformed"))
	default:
		metrics.RecordPlannerRequest("transport_error")
		log.Error("planner request failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return c.Send(tr.T("query.err_transport"))
	}

	metrics.RecordPlannerRequest("ok")

	if err := repo.RecordHistory(userID, start, end); err != nil {
		// History is best effort: the user still gets their route.
		log.Error("failed to record history", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(result.ImagePNG))}
	photo.Caption = fmt.Sprintf("%s → %s", start, end)

	log.Info("route query succeeded", slog.Int64("user_id", userID), slog.String("start", start), slog.String("end", end))
	return c.Send(photo)
}
