package media

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

// BreakerConfig mirrors internal/dmx.BreakerConfig.
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

// WindowDefinition and ChannelDefinition describe the fixed output
// topology re-posted to the player on every (re)connect.
type WindowDefinition struct {
	ID     uint32 `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ChannelDefinition struct {
	Channel uint32 `json:"channel"`
	Window  uint32 `json:"window"`
}

// Client talks to a single Apollo player instance over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[interface{}]
	windows  []WindowDefinition
	channels []ChannelDefinition
	known    map[uint32]struct{}
}

// NewClient builds a Client for the player listening at baseURL, fixed to
// the given window/channel topology.
func NewClient(baseURL string, httpClient *http.Client, cfg BreakerConfig, windows []WindowDefinition, channels []ChannelDefinition) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	known := make(map[uint32]struct{}, len(channels))
	for _, c := range channels {
		known[c.Channel] = struct{}{}
	}
	return &Client{
		baseURL:  baseURL,
		http:     httpClient,
		breaker:  newBreaker(cfg),
		windows:  windows,
		channels: channels,
		known:    known,
	}
}

// Connect (re)posts every window and channel definition, as required
// before the player will accept cues.
func (c *Client) Connect(ctx context.Context) error {
	for _, w := range c.windows {
		if _, err := c.post(ctx, "/defineWindow", w); err != nil {
			return fmt.Errorf("define window %d: %w", w.ID, err)
		}
	}
	for _, ch := range c.channels {
		if _, err := c.post(ctx, "/defineChannel", ch); err != nil {
			return fmt.Errorf("define channel %d: %w", ch.Channel, err)
		}
	}
	return nil
}

func (c *Client) validate(channel uint32) error {
	if _, ok := c.known[channel]; !ok {
		return fmt.Errorf("media channel %d is not configured", channel)
	}
	return nil
}

type cueRequest struct {
	Channel   uint32  `json:"channel"`
	URI       string  `json:"uri"`
	LoopMedia *string `json:"loop_media,omitempty"`
}

// PlayCue validates the channel and posts the cue to /cueMedia.
func (c *Client) PlayCue(ctx context.Context, cue model.MediaCue) error {
	if err := c.validate(cue.Channel); err != nil {
		return err
	}
	_, err := c.post(ctx, "/cueMedia", cueRequest{Channel: cue.Channel, URI: cue.URI, LoopMedia: cue.LoopMedia})
	return err
}

type alignRequest struct {
	Channel  uint32        `json:"channel"`
	Position time.Duration `json:"position_ms"`
}

// AdjustMedia validates the channel and posts the adjustment to
// /alignChannel.
func (c *Client) AdjustMedia(ctx context.Context, adj model.MediaAdjustment) error {
	if err := c.validate(adj.Channel); err != nil {
		return err
	}
	_, err := c.post(ctx, "/alignChannel", alignRequest{Channel: adj.Channel, Position: adj.Position / time.Millisecond})
	return err
}

type seekRequest struct {
	Channel    uint32 `json:"channel"`
	PositionMS int64  `json:"position_ms"`
}

// RestorePlaylist re-cues every channel in playlist at its last known
// position, used after a crash-recovery reload.
func (c *Client) RestorePlaylist(ctx context.Context, playlist model.MediaPlaylist) error {
	for channel, playback := range playlist {
		if err := c.validate(channel); err != nil {
			continue
		}
		if _, err := c.post(ctx, "/cueMedia", cueRequest{Channel: channel, URI: playback.Cue.URI, LoopMedia: playback.Cue.LoopMedia}); err != nil {
			return fmt.Errorf("restore channel %d: %w", channel, err)
		}
		if _, err := c.post(ctx, "/seek", seekRequest{Channel: channel, PositionMS: playback.TimeSince.Milliseconds()}); err != nil {
			return fmt.Errorf("seek channel %d: %w", channel, err)
		}
	}
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
			return nil, fmt.Errorf("%s: player returned status %d", path, resp.StatusCode)
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
