package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/keyboard"
	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
)

// NewAddShortcutHandler returns the /addroute entry handler.
func NewAddShortcutHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		sessions.Begin(userID, session.FlowAddShortcut, session.StateAwaitingRouteName)
		log.Info("add-shortcut flow started", slog.Int64("user_id", userID))

		return c.Send(tr.T("shortcut.prompt_name"))
	}
}

// NewShortcutNameHandler consumes the shortcut name and asks for the start
// station.
func NewShortcutNameHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		name := c.Text()

		err := sessions.Advance(userID, session.StateAwaitingStartStation, func(s *session.Scratch) {
			s.Name = name
		})
		if err != nil {
			sessions.Clear(userID)
			return apperrors.NewSessionError("add-shortcut flow transition rejected")
		}

		return c.Send(tr.T("query.prompt_start"))
	}
}

// NewShortcutStartStationHandler consumes the start station and asks for the
// end station.
func NewShortcutStartStationHandler(sessions *session.Manager, tr i18n.Translator, log *slog.Logger) Handler {
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
			sessions.Clear(userID)
			return apperrors.NewSessionError("add-shortcut flow transition rejected")
		}

		return c.Send(tr.T("query.prompt_end"))
	}
}

// NewShortcutEndStationHandler finishes the add-shortcut flow, upserting the
// named pair. An existing shortcut with the same name is overwritten.
func NewShortcutEndStationHandler(
	sessions *session.Manager,
	repo repository.ProfileRepository,
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
			return apperrors.NewSessionError("add-shortcut flow has no open session")
		}
		name, start := sess.Scratch.Name, sess.Scratch.Start
		sessions.Clear(userID)

		shortcuts, err := repo.GetShortcuts(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		shortcuts[name] = domain.Shortcut{Start: start, End: end}
		if err := repo.SaveShortcuts(userID, shortcuts); err != nil {
			return apperrors.NewStoreError(err)
		}

		log.Info("shortcut added",
			slog.Int64("user_id", userID),
			slog.String("name", name),
			slog.String("start", start),
			slog.String("end", end),
		)

		return c.Send(fmt.Sprintf(tr.T("shortcut.added"), name, start, end))
	}
}

// NewShortcutRunHandler returns the /route handler. Without an argument it
// lists all shortcuts; with one it runs the named shortcut as a route query.
func NewShortcutRunHandler(
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
		args := c.Args()

		shortcuts, err := repo.GetShortcuts(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		if len(args) == 0 {
			if len(shortcuts) == 0 {
				return c.Send(tr.T("shortcut.empty"))
			}

			var sb strings.Builder
			sb.WriteString(tr.T("shortcut.list_header"))
			sb.WriteString("\n\n")
			for _, name := range sortedNames(shortcuts) {
				shortcut := shortcuts[name]
				sb.WriteString(fmt.Sprintf("/route %s - %s → %s\n", name, shortcut.Start, shortcut.End))
			}
			sb.WriteString("\n")
			sb.WriteString(tr.T("shortcut.list_footer"))

			return c.Send(sb.String())
		}

		name := args[0]
		shortcut, ok := shortcuts[name]
		if !ok {
			log.Warn("shortcut not found", slog.Int64("user_id", userID), slog.String("name", name))
			return c.Send(fmt.Sprintf(tr.T("shortcut.not_found"), name))
		}

		if err := c.Send(fmt.Sprintf(tr.T("query.planning_named"), shortcut.Start, shortcut.End)); err != nil {
			return err
		}

		return ExecuteQuery(c, repo, pl, tr, log, userID, shortcut.Start, shortcut.End)
	}
}

// NewDeleteShortcutHandler returns the /delroute entry handler. It lists all
// shortcuts as delete buttons and opens the delete-selection state.
func NewDeleteShortcutHandler(
	sessions *session.Manager,
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
		shortcuts, err := repo.GetShortcuts(userID)
		if err != nil {
			return apperrors.NewStoreError(err)
		}

		if len(shortcuts) == 0 {
			return c.Send(tr.T("shortcut.empty"))
		}

		names := sortedNames(shortcuts)

		var sb strings.Builder
		sb.WriteString(tr.T("shortcut.delete_prompt"))
		sb.WriteString("\n\n")
		for _, name := range names {
			shortcut := shortcuts[name]
			sb.WriteString(fmt.Sprintf("/route %s - %s → %s\n", name, shortcut.Start, shortcut.End))
		}

		sessions.Begin(userID, session.FlowDeleteShortcut, session.StateAwaitingDeleteSelection)
		log.Info("delete-shortcut flow started", slog.Int64("user_id", userID))

		return c.Send(sb.String(), kb.ShortcutDeleteList(names, shortcuts))
	}
}

// NewDeleteShortcutCallback handles the delete button press. A missing name
// is reported and still ends the flow.
func NewDeleteShortcutCallback(
	sessions *session.Manager,
	repo repository.ProfileRepository,
	tr i18n.Translator,
	log *slog.Logger,
) func(c telebot.Context, name string) error {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context, name string) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		sessions.Clear(userID)

		err := repo.DeleteShortcut(userID, name)
		switch {
		case err == nil:
			log.Info("shortcut deleted", slog.Int64("user_id", userID), slog.String("name", name))
			return c.Edit(fmt.Sprintf(tr.T("shortcut.deleted"), name))
		case errors.Is(err, apperrors.ErrShortcutNotFound):
			log.Warn("delete of unknown shortcut", slog.Int64("user_id", userID), slog.String("name", name))
			return c.Edit(fmt.Sprintf(tr.T("shortcut.not_found"), name))
		default:
			return apperrors.NewStoreError(err)
		}
	}
}

func sortedNames(shortcuts map[string]domain.Shortcut) []string {
	names := make([]string, 0, len(shortcuts))
	for name := range shortcuts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
