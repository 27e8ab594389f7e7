package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/handlers"
	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	"github.com/leonmmcoset/mtr-nav-bot/internal/i18n"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
	"github.com/leonmmcoset/mtr-nav-bot/internal/repository"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
	"github.com/leonmmcoset/mtr-nav-bot/internal/storage"
)

// fakeContext satisfies the slice of telebot.Context the handlers touch.
// Unimplemented interface methods stay nil and would panic if reached.
type fakeContext struct {
	telebot.Context
	sender *telebot.User
	text   string
	args   []string
	sent   []interface{}
	edited []interface{}
}

func (c *fakeContext) Sender() *telebot.User { return c.sender }
func (c *fakeContext) Text() string          { return c.text }
func (c *fakeContext) Args() []string        { return c.args }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	c.edited = append(c.edited, what)
	return nil
}

func (c *fakeContext) Respond(_ ...*telebot.CallbackResponse) error { return nil }

func ctxFor(userID int64, text string, args ...string) *fakeContext {
	return &fakeContext{sender: &telebot.User{ID: userID}, text: text, args: args}
}

func oneShortcut(name, start, end string) map[string]domain.Shortcut {
	return map[string]domain.Shortcut{name: {Start: start, End: end}}
}

type fakePlanner struct {
	calls int
	err   error
}

func (p *fakePlanner) Plan(_ context.Context, _, _, _ string, _ planner.Filters) (*planner.Result, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &planner.Result{ImagePNG: []byte("png")}, nil
}

type testEnv struct {
	sessions *session.Manager
	repo     repository.ProfileRepository
	tr       i18n.Translator
	log      *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(filepath.Join(t.TempDir(), "user_data.json"), log)

	m, err := i18n.Load("zh")
	require.NoError(t, err)

	return &testEnv{
		sessions: session.NewManager(log),
		repo:     repository.NewProfileRepository(store, log),
		tr:       m.Translator("zh"),
		log:      log,
	}
}

func TestAddShortcutFlow(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	entry := handlers.NewAddShortcutHandler(env.sessions, env.tr, env.log)
	name := handlers.NewShortcutNameHandler(env.sessions, env.tr, env.log)
	start := handlers.NewShortcutStartStationHandler(env.sessions, env.tr, env.log)
	end := handlers.NewShortcutEndStationHandler(env.sessions, env.repo, env.tr, env.log)

	require.NoError(t, entry(ctxFor(userID, "/addroute")))
	require.NoError(t, name(ctxFor(userID, "home")))
	require.NoError(t, start(ctxFor(userID, "Central")))
	require.NoError(t, end(ctxFor(userID, "North Bay")))

	shortcuts, err := env.repo.GetShortcuts(userID)
	require.NoError(t, err)
	require.Contains(t, shortcuts, "home")
	assert.Equal(t, "Central", shortcuts["home"].Start)
	assert.Equal(t, "North Bay", shortcuts["home"].End)

	_, err = env.sessions.Get(userID)
	assert.Error(t, err, "finished flow must leave no open session")
}

func TestAddShortcutFlow_ReplacesExisting(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	require.NoError(t, env.repo.SaveShortcuts(userID, oneShortcut("home", "A", "B")))

	entry := handlers.NewAddShortcutHandler(env.sessions, env.tr, env.log)
	name := handlers.NewShortcutNameHandler(env.sessions, env.tr, env.log)
	start := handlers.NewShortcutStartStationHandler(env.sessions, env.tr, env.log)
	end := handlers.NewShortcutEndStationHandler(env.sessions, env.repo, env.tr, env.log)

	require.NoError(t, entry(ctxFor(userID, "/addroute")))
	require.NoError(t, name(ctxFor(userID, "home")))
	require.NoError(t, start(ctxFor(userID, "X")))
	require.NoError(t, end(ctxFor(userID, "Y")))

	shortcuts, err := env.repo.GetShortcuts(userID)
	require.NoError(t, err)
	assert.Equal(t, "X", shortcuts["home"].Start)
	assert.Equal(t, "Y", shortcuts["home"].End)
}

func TestCancelMidFlow(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	entry := handlers.NewAddShortcutHandler(env.sessions, env.tr, env.log)
	name := handlers.NewShortcutNameHandler(env.sessions, env.tr, env.log)
	cancel := handlers.NewCancelHandler(env.sessions, env.tr, env.log)

	require.NoError(t, entry(ctxFor(userID, "/addroute")))
	require.NoError(t, name(ctxFor(userID, "home")))
	require.NoError(t, cancel(ctxFor(userID, "/cancel")))

	_, err := env.sessions.Get(userID)
	assert.Error(t, err)

	shortcuts, err := env.repo.GetShortcuts(userID)
	require.NoError(t, err)
	assert.Empty(t, shortcuts, "cancelled flow must not persist anything")
}

func TestShortcutRun_RecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	require.NoError(t, env.repo.SaveShortcuts(userID, oneShortcut("home", "Central", "North Bay")))

	pl := &fakePlanner{}
	run := handlers.NewShortcutRunHandler(env.repo, pl, env.tr, env.log)

	c := ctxFor(userID, "/route home", "home")
	require.NoError(t, run(c))
	assert.Equal(t, 1, pl.calls)

	history, err := env.repo.GetHistory(userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Central", history[0].Start)
	assert.Equal(t, "North Bay", history[0].End)

	var sawPhoto bool
	for _, msg := range c.sent {
		if _, ok := msg.(*telebot.Photo); ok {
			sawPhoto = true
		}
	}
	assert.True(t, sawPhoto, "successful query must send the route image")
}

func TestShortcutRun_UnknownName(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	pl := &fakePlanner{}
	run := handlers.NewShortcutRunHandler(env.repo, pl, env.tr, env.log)

	c := ctxFor(userID, "/route nope", "nope")
	require.NoError(t, run(c))
	assert.Zero(t, pl.calls)
	require.Len(t, c.sent, 1)
}

func TestDeleteShortcutCallback(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	require.NoError(t, env.repo.SaveShortcuts(userID, oneShortcut("home", "A", "B")))
	env.sessions.Begin(userID, session.FlowDeleteShortcut, session.StateAwaitingDeleteSelection)

	cb := handlers.NewDeleteShortcutCallback(env.sessions, env.repo, env.tr, env.log)

	c := ctxFor(userID, "")
	require.NoError(t, cb(c, "home"))
	require.Len(t, c.edited, 1)

	shortcuts, err := env.repo.GetShortcuts(userID)
	require.NoError(t, err)
	assert.Empty(t, shortcuts)

	_, err = env.sessions.Get(userID)
	assert.Error(t, err)
}

func TestDeleteShortcutCallback_UnknownName(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 7

	require.NoError(t, env.repo.SaveShortcuts(userID, oneShortcut("home", "A", "B")))

	cb := handlers.NewDeleteShortcutCallback(env.sessions, env.repo, env.tr, env.log)

	c := ctxFor(userID, "")
	require.NoError(t, cb(c, "nope"))

	shortcuts, err := env.repo.GetShortcuts(userID)
	require.NoError(t, err)
	assert.Contains(t, shortcuts, "home", "unknown delete must not touch existing shortcuts")
}
