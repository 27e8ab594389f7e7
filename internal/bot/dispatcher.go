package bot

import (
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/handlers"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
)

// Dispatcher routes plain-text updates to the handler of the user's current
// conversation step.
type Dispatcher struct {
	sessions     *session.Manager
	stepHandlers map[session.Step]handlers.Handler
	log          *slog.Logger
	mu           sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty handlers registry.
func NewDispatcher(sessions *session.Manager, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		sessions:     sessions,
		stepHandlers: make(map[session.Step]handlers.Handler),
		log:          log,
	}
}

// RegisterStepHandler registers a handler for the given flow step.
func (d *Dispatcher) RegisterStepHandler(step session.Step, h handlers.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepHandlers[step] = h
}

// HasHandler reports whether the user's current step has a registered
// handler, without running it.
func (d *Dispatcher) HasHandler(c telebot.Context) bool {
	if c == nil || c.Sender() == nil {
		return false
	}

	sess, err := d.sessions.Get(c.Sender().ID)
	if err != nil {
		return false
	}

	return d.getHandler(sess.Step()) != nil
}

// Dispatch routes the update based on the user's open session. It reports
// whether a step handler consumed the update.
func (d *Dispatcher) Dispatch(c telebot.Context) (bool, error) {
	if c == nil || c.Sender() == nil {
		d.log.Warn("cannot dispatch without sender information")
		return false, nil
	}

	userID := c.Sender().ID
	sess, err := d.sessions.Get(userID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	handler := d.getHandler(sess.Step())
	if handler == nil {
		d.log.Info("no handler registered for step",
			slog.String("flow", string(sess.Flow)),
			slog.String("state", string(sess.State)),
			slog.Int64("user_id", userID),
		)
		return false, nil
	}

	return true, handler(c)
}

func (d *Dispatcher) getHandler(step session.Step) handlers.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stepHandlers[step]
}
