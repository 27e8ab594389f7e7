package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/events"
	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/handlers"
)

// Router dispatches commands, inline-callback events, and step-aware updates.
type Router struct {
	mu                     sync.RWMutex
	commands               map[string]handlers.Handler
	settingsCallback       func(telebot.Context, events.SettingsField) error
	historyCallback        func(telebot.Context, int) error
	deleteShortcutCallback func(telebot.Context, string) error
	dispatcher             *Dispatcher
	defaultHandler         handlers.Handler
	middlewares            []handlers.Middleware
	log                    *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(dispatcher *Dispatcher, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		dispatcher:  dispatcher,
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// RegisterSettingsCallback registers the settings panel button handler.
func (r *Router) RegisterSettingsCallback(h func(telebot.Context, events.SettingsField) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settingsCallback = h
}

// RegisterHistoryCallback registers the history rerun button handler.
func (r *Router) RegisterHistoryCallback(h func(telebot.Context, int) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.historyCallback = h
}

// RegisterDeleteShortcutCallback registers the shortcut delete button handler.
func (r *Router) RegisterDeleteShortcutCallback(h func(telebot.Context, string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteShortcutCallback = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for unmatched commands or steps.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if callback := c.Callback(); callback != nil {
		return r.handleCallback(c, callback.Data)
	}

	return r.handleMessage(c)
}

func (r *Router) handleCallback(c telebot.Context, data string) error {
	// Telebot prefixes raw callback data with \f.
	event, err := events.Decode(strings.TrimPrefix(data, "\f"))
	if err != nil {
		r.log.Info("undecodable callback ignored", slog.String("data", data), slog.Any("error", err))
		return c.Respond(&telebot.CallbackResponse{})
	}

	handler := r.callbackHandler(event)
	if handler == nil {
		r.log.Info("no callback handler registered", slog.Int("kind", int(event.Kind)))
		return c.Respond(&telebot.CallbackResponse{})
	}

	return r.executeHandler(handler, c)
}

func (r *Router) callbackHandler(event events.Event) handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch event.Kind {
	case events.KindSettings:
		if r.settingsCallback == nil {
			return nil
		}
		return func(c telebot.Context) error { return r.settingsCallback(c, event.SettingsField) }
	case events.KindHistory:
		if r.historyCallback == nil {
			return nil
		}
		return func(c telebot.Context) error { return r.historyCallback(c, event.HistoryIndex) }
	case events.KindDeleteShortcut:
		if r.deleteShortcutCallback == nil {
			return nil
		}
		return func(c telebot.Context) error { return r.deleteShortcutCallback(c, event.ShortcutName) }
	default:
		return nil
	}
}

func (r *Router) handleMessage(c telebot.Context) error {
	text := c.Text()

	if strings.HasPrefix(text, "/") {
		if handler := r.getCommandHandler(commandToken(text)); handler != nil {
			return r.executeHandler(handler, c)
		}
		// An unknown command is never flow input; a typo mid-flow must
		// not be swallowed as a station name.
		if handler := r.getDefaultHandler(); handler != nil {
			return r.executeHandler(handler, c)
		}
		return nil
	}

	stepHandled, err := r.dispatchStep(c)
	if err != nil {
		return err
	}
	if stepHandled {
		return nil
	}

	if handler := r.getDefaultHandler(); handler != nil {
		return r.executeHandler(handler, c)
	}

	return nil
}

// commandToken extracts the bare command from a message, dropping arguments
// and an @botname suffix.
func commandToken(text string) string {
	token := text
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	if i := strings.IndexByte(token, '@'); i > 0 {
		token = token[:i]
	}
	return token
}

func (r *Router) dispatchStep(c telebot.Context) (bool, error) {
	if r.dispatcher == nil || !r.dispatcher.HasHandler(c) {
		return false, nil
	}

	exec := func(tc telebot.Context) error {
		_, err := r.dispatcher.Dispatch(tc)
		return err
	}

	return true, r.executeHandler(exec, c)
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

func (r *Router) getCommandHandler(cmd string) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[cmd]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getDefaultHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
