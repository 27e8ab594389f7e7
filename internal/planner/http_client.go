package planner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/leonmmcoset/mtr-nav-bot/internal/errors"
)

const planPath = "/api/plan"

type planRequest struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	MapLink string  `json:"map_link"`
	Filters Filters `json:"filters"`
	Image   bool    `json:"image"`
}

type planResponse struct {
	Image string `json:"image"`
	Error string `json:"error"`
}

// HTTPClient talks to the pathfinder sidecar over HTTP. Transport failures
// are retried with backoff and guarded by a circuit breaker so a dead
// sidecar fails fast instead of stalling every query flow.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewHTTPClient creates a planner client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, breakerCooldown time.Duration, log *slog.Logger) *HTTPClient {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: apperrors.NewCircuitBreaker(breakerCooldown),
		log:     log,
	}
}

// Plan requests a route. The settings travel with the request; nothing about
// the filter configuration is ambient.
func (c *HTTPClient) Plan(ctx context.Context, start, end, mapLink string, filters Filters) (*Result, error) {
	body, err := json.Marshal(planRequest{
		Start:   start,
		End:     end,
		MapLink: mapLink,
		Filters: filters,
		Image:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal plan request: %w", err)
	}

	var result *Result
	err = apperrors.WithRetry(ctx, func() error {
		var planErr error
		breakerErr := c.breaker.Call(func() error {
			result, planErr = c.planOnce(ctx, body)
			if isPlannerVerdict(planErr) {
				// The sidecar answered; only transport failures count
				// against the breaker.
				return nil
			}
			return planErr
		})
		if breakerErr != nil {
			return breakerErr
		}
		return planErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// isPlannerVerdict reports whether err is a definitive answer from the
// sidecar rather than a failure to reach it.
func isPlannerVerdict(err error) bool {
	return errors.Is(err, apperrors.ErrRouteNotFound) ||
		errors.Is(err, apperrors.ErrStationUnresolved) ||
		errors.Is(err, apperrors.ErrResultMalformed)
}

func (c *HTTPClient) planOnce(ctx context.Context, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+planPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewPlannerTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewPlannerTransportError(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeResult(resp.Body)
	case http.StatusNotFound:
		return nil, apperrors.ErrRouteNotFound
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return nil, apperrors.ErrStationUnresolved
	default:
		return nil, apperrors.NewPlannerTransportError(fmt.Errorf("planner responded with status %d", resp.StatusCode))
	}
}

// decodeResult interprets a success payload. A 200 with a missing or
// undecodable image is its own error class, distinct from transport failure.
func decodeResult(body io.Reader) (*Result, error) {
	var payload planResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrResultMalformed, err)
	}

	if payload.Image == "" {
		return nil, fmt.Errorf("%w: success payload has no image", apperrors.ErrResultMalformed)
	}

	img, err := base64.StdEncoding.DecodeString(payload.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", apperrors.ErrResultMalformed)
	}

	return &Result{ImagePNG: img}, nil
}

// HealthCheck probes the planner base URL.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("planner responded with status %d", resp.StatusCode)
	}

	return nil
}
