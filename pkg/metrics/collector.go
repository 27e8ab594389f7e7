package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leonmmcoset/mtr-nav-bot/internal/session"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	flowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_transitions_total",
			Help: "Total number of conversation flow transitions",
		},
		[]string{"flow", "from", "to"},
	)
	plannerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_requests_total",
			Help: "Total number of route planning requests labeled by outcome",
		},
		[]string{"outcome"},
	)
	storeWriteDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Duration of user data persistence in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	openSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "open_sessions",
			Help: "Current number of open conversation sessions",
		},
	)
)

func init() {
	session.RegisterTransitionRecorder(RecordFlowTransition)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordFlowTransition tracks conversation flow transitions.
func RecordFlowTransition(flow, from, to string) {
	if flow == "" {
		flow = "unknown"
	}
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	flowTransitionsTotal.WithLabelValues(flow, from, to).Inc()
}

// RecordPlannerRequest counts one route planning attempt by outcome.
func RecordPlannerRequest(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}

	plannerRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStoreWrite records how long one persistence pass took.
func ObserveStoreWrite(duration time.Duration) {
	storeWriteDurationSeconds.Observe(duration.Seconds())
}

// SessionCollector periodically publishes the open session count.
type SessionCollector struct {
	sessions *session.Manager
}

// NewSessionCollector builds a collector bound to the session manager.
func NewSessionCollector(sessions *session.Manager) *SessionCollector {
	return &SessionCollector{sessions: sessions}
}

// Run polls every 10 seconds, updating the gauge until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		openSessions.Set(float64(c.sessions.Len()))

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}
