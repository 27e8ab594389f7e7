package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonmmcoset/mtr-nav-bot/internal/bot/handlers"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
)

func TestQueryFlow_Success(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 11

	start := handlers.NewQueryStartHandler(env.sessions, env.tr, env.log)
	startStation := handlers.NewQueryStartStationHandler(env.sessions, env.tr, env.log)
	endStation := handlers.NewQueryEndStationHandler(env.sessions, env.repo, &fakePlanner{}, env.tr, env.log)

	require.NoError(t, start(ctxFor(userID, "/path")))
	require.NoError(t, startStation(ctxFor(userID, "Central")))
	require.NoError(t, endStation(ctxFor(userID, "North Bay")))

	_, err := env.sessions.Get(userID)
	assert.Error(t, err, "finished query must leave no open session")

	history, err := env.repo.GetHistory(userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Central", history[0].Start)
	assert.Equal(t, "North Bay", history[0].End)
}

func TestExecuteQuery_FailureClasses(t *testing.T) {
	testCases := []struct {
		name    string
		planErr error
	}{
		{"route not found", apperrors.ErrRouteNotFound},
		{"station unresolved", apperrors.ErrStationUnresolved},
		{"malformed result", apperrors.ErrResultMalformed},
		{"transport failure", apperrors.NewPlannerTransportError(assert.AnError)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			const userID int64 = 11

			c := ctxFor(userID, "")
			err := handlers.ExecuteQuery(c, env.repo, &fakePlanner{err: tc.planErr}, env.tr, env.log, userID, "A", "B")
			require.NoError(t, err, "planner failures are reported to the user, not re-raised")
			require.Len(t, c.sent, 1)

			history, err := env.repo.GetHistory(userID)
			require.NoError(t, err)
			assert.Empty(t, history, "failed queries must not enter history")
		})
	}
}

func TestQueryFlow_TextMidFlowFollowsSession(t *testing.T) {
	env := newTestEnv(t)
	const userID int64 = 11

	start := handlers.NewQueryStartHandler(env.sessions, env.tr, env.log)
	require.NoError(t, start(ctxFor(userID, "/path")))

	sess, err := env.sessions.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, session.FlowQuery, sess.Flow)
	assert.Equal(t, session.StateAwaitingStartStation, sess.State)
}
