package dmx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/model"
)

// BreakerConfig mirrors the circuit breaker settings used across this
// codebase's external-process clients.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults for a named breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[interface{}] {
	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.RecordBreakerStateChange(name, to.String())
		},
	})
}

// Client talks to a single Vulcan controller instance over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// NewClient builds a Client for the controller listening at baseURL.
func NewClient(baseURL string, httpClient *http.Client, cfg BreakerConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient, breaker: newBreaker(cfg)}
}

type playFadeRequest struct {
	Channel  int            `json:"channel"`
	Value    uint8          `json:"value"`
	Duration *time.Duration `json:"duration,omitempty"`
}

// PlayFade validates the channel range and posts the fade to /playFade.
func (c *Client) PlayFade(ctx context.Context, fade model.DMXFade) error {
	if err := fade.Validate(); err != nil {
		return err
	}
	body := playFadeRequest{Channel: fade.Channel, Value: fade.Value, Duration: fade.Duration}
	_, err := c.post(ctx, "/playFade", body)
	return err
}

type loadUniverseRequest struct {
	Channels [model.DMXUniverseSize]uint8 `json:"channels"`
}

// RestoreUniverse posts a full 512-channel snapshot to /loadUniverse.
func (c *Client) RestoreUniverse(ctx context.Context, universe model.DMXUniverse) error {
	_, err := c.post(ctx, "/loadUniverse", loadUniverseRequest{Channels: universe.Snapshot()})
	return err
}

// Close notifies the controller of shutdown via /close. It is not
// breaker-protected: a shutdown notification should be attempted even if
// the breaker is currently open.
func (c *Client) Close(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/close", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (interface{}, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%s: controller returned status %d", path, resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBreakerRequest(c.breaker.Name(), "rejected")
		} else {
			metrics.RecordBreakerRequest(c.breaker.Name(), "failure")
		}
		return result, err
	}
	metrics.RecordBreakerRequest(c.breaker.Name(), "success")
	return result, nil
}
