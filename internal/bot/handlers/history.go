package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/keyboard"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
)

// NewHistoryHandler returns the /history handler. Entries are listed newest
// first with one rerun button each.
func NewHistoryHandler(
	repo repository.ProfileRepository,
	kb *keyboard.Builder,
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
		history, err := repo.GetHistory(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		if len(history) == 0 {
			return c.Send(tr.T("history.empty"))
		}

		var sb strings.Builder
		sb.WriteString(tr.T("history.header"))
		sb.WriteString("\n\n")
		for i, entry := range history {
			sb.WriteString(fmt.Sprintf("%d. %s → %s  (%s)\n", i+1, entry.Start, entry.End, entry.Time))
		}

		return c.Send(sb.String(), kb.HistoryList(history))
	}
}

// NewHistoryCallback reruns the history entry at the given index as a fresh
// route query. The index can go stale when the list changes under an old
// message; a stale index is reported without running anything.
func NewHistoryCallback(
	repo repository.ProfileRepository,
	pl planner.Planner,
	tr i18n.Translator,
	log *slog.Logger,
) func(c telebot.Context, index int) error {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context, index int) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		history, err := repo.GetHistory(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		if index < 0 || index >= len(history) {
			log.Warn("stale history index",
				slog.Int64("user_id", userID),
				slog.Int("index", index),
				slog.Int("len", len(history)),
			)
			return c.Send(tr.T("history.missing"))
		}

		entry := history[index]
		if err := c.Send(fmt.Sprintf(tr.T("query.planning_named"), entry.Start, entry.End)); err != nil {
			return err
		}

		return ExecuteQuery(c, repo, pl, tr, log, userID, entry.Start, entry.End)
	}
}
