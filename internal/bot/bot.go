// Package bot wires the Telegram transport to the conversation flows.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/handlers"
	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/keyboard"
	"github.com/leonmmcoset/mtr-nav-bot/internal/directory"
	errors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/middleware"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
	"github.com/leonmmcoset/mtr-nav-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application dependencies required for
// handling updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         *config.Config
	sessions    *session.Manager
	router      *Router
	dispatcher  *Dispatcher
	keyboard    *keyboard.Builder
	errHandler  *errors.Handler
	rateLimitMw *middleware.RateLimitMiddleware
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg *config.Config,
	log *slog.Logger,
	tr i18n.Translator,
	sessions *session.Manager,
	repo repository.ProfileRepository,
	pl planner.Planner,
	fetcher *directory.Fetcher,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Bot.Listen,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(tr, log)
	dispatcher := NewDispatcher(sessions, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		sessions:    sessions,
		router:      router,
		dispatcher:  dispatcher,
		keyboard:    kb,
		errHandler:  errHandler,
		rateLimitMw: rateLimitMw,
	}

	b.setupRouter(tr, repo, pl, fetcher)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(
	tr i18n.Translator,
	repo repository.ProfileRepository,
	pl planner.Planner,
	fetcher *directory.Fetcher,
) {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(SessionLockMiddleware(b.sessions))
	b.router.Use(middleware.Metrics)

	helpHandler := handlers.NewHelpHandler(tr)
	b.router.RegisterCommand(CommandStart, helpHandler)
	b.router.RegisterCommand(CommandHelp, helpHandler)
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.sessions, tr, b.log))

	b.router.RegisterCommand(CommandPath, handlers.NewQueryStartHandler(b.sessions, tr, b.log))
	b.router.RegisterCommand(CommandHistory, handlers.NewHistoryHandler(repo, b.keyboard, tr, b.log))

	b.router.RegisterCommand(CommandAddRoute, handlers.NewAddShortcutHandler(b.sessions, tr, b.log))
	b.router.RegisterCommand(CommandRoute, handlers.NewShortcutRunHandler(repo, pl, tr, b.log))
	b.router.RegisterCommand(CommandDelRoute, handlers.NewDeleteShortcutHandler(b.sessions, repo, b.keyboard, tr, b.log))

	b.router.RegisterCommand(CommandStation, handlers.NewStationHandler(repo, fetcher, tr, b.log))
	b.router.RegisterCommand(CommandSearch, handlers.NewSearchHandler(repo, fetcher, tr, b.log))

	b.router.RegisterCommand(CommandSetMap, handlers.NewSetMapLinkHandler(b.sessions, tr, b.log))
	b.router.RegisterCommand(CommandSeeMap, handlers.NewSeeMapHandler(repo, tr, b.log))
	b.router.RegisterCommand(CommandSettings, handlers.NewSettingsHandler(repo, b.keyboard, tr, b.log))

	b.router.RegisterSettingsCallback(handlers.NewSettingsCallback(repo, b.keyboard, tr, b.log))
	b.router.RegisterHistoryCallback(handlers.NewHistoryCallback(repo, pl, tr, b.log))
	b.router.RegisterDeleteShortcutCallback(handlers.NewDeleteShortcutCallback(b.sessions, repo, tr, b.log))

	b.registerStepHandlers(tr, repo, pl)
}

func (b *Bot) registerStepHandlers(tr i18n.Translator, repo repository.ProfileRepository, pl planner.Planner) {
	if b.dispatcher == nil {
		return
	}

	b.dispatcher.RegisterStepHandler(
		session.Step{Flow: session.FlowQuery, State: session.StateAwaitingStartStation},
		handlers.NewQueryStartStationHandler(b.sessions, tr, b.log),
	)
	b.dispatcher.RegisterStepHandler(
		session.Step{Flow: session.FlowQuery, State: session.StateAwaitingEndStation},
		handlers.NewQueryEndStationHandler(b.sessions, repo, pl, tr, b.log),
	)

	b.dispatcher.RegisterStepHandler(
		session.Step{Flow: session.FlowAddShortcut, State: session.StateAwaitingRouteName},
		handlers.NewShortcutNameHandler(b.sessions, tr, b.log),
	)
	b.dispatcher.RegisterStepHandler(
		session.Step{Flow: session.FlowAddShortcut, State: session.StateAwaitingStartStation},
		handlers.NewShortcutStartStationHandler(b.sessions, tr, b.log),
	)
	b.dispatcher.RegisterStepHandler(
		session.Step{Flow: session.FlowAddShortcut, State: session.StateAwaitingEndStation},
		handlers.NewShortcutEndStationHandler(b.sessions, repo, tr, b.log),
	)

	b.dispatcher.RegisterStepHandler(
		session.Step{Flow: session.FlowSetMapLink, State: session.StateAwaitingMapLink},
		handlers.NewMapLinkInputHandler(b.sessions, repo, tr, b.log),
	)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
