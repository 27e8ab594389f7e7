package planner_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonmmcoset/mtr-nav-bot/internal/domain"
	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
	"github.com/leonmmcoset/mtr-nav-bot/internal/planner"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, handler http.HandlerFunc) *planner.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return planner.NewHTTPClient(srv.URL, 5*time.Second, time.Second, testLogger())
}

func TestPlan_Success(t *testing.T) {
	image := []byte("fake png bytes")

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/plan", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Central", body["start"])
		assert.Equal(t, "North Bay", body["end"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"image": base64.StdEncoding.EncodeToString(image),
		})
	})

	filters := planner.FiltersFromSettings(domain.DefaultSettings())
	result, err := client.Plan(context.Background(), "Central", "North Bay", domain.DefaultMapLink, filters)
	require.NoError(t, err)
	assert.Equal(t, image, result.ImagePNG)
}

func TestPlan_RouteNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Plan(context.Background(), "Central", "Nowhere", domain.DefaultMapLink, planner.Filters{})
	assert.ErrorIs(t, err, apperrors.ErrRouteNotFound)
}

func TestPlan_StationUnresolved(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity} {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.Plan(context.Background(), "???", "North Bay", domain.DefaultMapLink, planner.Filters{})
		assert.ErrorIs(t, err, apperrors.ErrStationUnresolved, "status %d", status)
	}
}

func TestPlan_MalformedSuccessPayload(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"missing image", `{"error":""}`},
		{"invalid base64", `{"image":"@@@not-base64@@@"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.Plan(context.Background(), "Central", "North Bay", domain.DefaultMapLink, planner.Filters{})
			assert.ErrorIs(t, err, apperrors.ErrResultMalformed)
		})
	}
}

func TestPlan_ServerErrorIsRetried(t *testing.T) {
	attempts := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"image": base64.StdEncoding.EncodeToString([]byte("png")),
		})
	})

	result, err := client.Plan(context.Background(), "Central", "North Bay", domain.DefaultMapLink, planner.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []byte("png"), result.ImagePNG)
}

func TestPlan_NotFoundIsNotRetried(t *testing.T) {
	attempts := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Plan(context.Background(), "Central", "Nowhere", domain.DefaultMapLink, planner.Filters{})
	assert.ErrorIs(t, err, apperrors.ErrRouteNotFound)
	assert.Equal(t, 1, attempts)
}

func TestPlan_RepeatedNotFoundKeepsBreakerClosed(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 12; i++ {
		_, err := client.Plan(context.Background(), "Central", "Nowhere", domain.DefaultMapLink, planner.Filters{})
		assert.ErrorIs(t, err, apperrors.ErrRouteNotFound, "call %d", i+1)
		assert.NotErrorIs(t, err, apperrors.ErrCircuitOpen, "call %d", i+1)
	}
}

func TestPlan_TransportFailuresTripBreaker(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tripped := false
	for i := 0; i < 5 && !tripped; i++ {
		_, err := client.Plan(context.Background(), "Central", "North Bay", domain.DefaultMapLink, planner.Filters{})
		require.Error(t, err)
		tripped = errors.Is(err, apperrors.ErrCircuitOpen)
	}
	assert.True(t, tripped, "breaker never opened under sustained server errors")
}

func TestHealthCheck(t *testing.T) {
	healthy := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, healthy.HealthCheck(context.Background()))

	broken := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.Error(t, broken.HealthCheck(context.Background()))
}
