package media

import (
	"context"
	"net/http"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/metrics"
)

const restartBackoff = 2 * time.Second

// Supervisor spawns the Apollo player as a child process and restarts it
// on unexpected exit, identical to internal/dmx.Supervisor's model.
type Supervisor struct {
	log       zerolog.Logger
	command   string
	args      []string
	client    *Client
	closeURL  string
	httpClose *http.Client
}

// NewSupervisor builds a Supervisor that runs command/args as the
// player's child process, reconnecting client after every (re)start.
func NewSupervisor(log zerolog.Logger, command string, args []string, client *Client, closeURL string) *Supervisor {
	return &Supervisor{
		log:       log.With().Str("component", "media_supervisor").Logger(),
		command:   command,
		args:      args,
		client:    client,
		closeURL:  closeURL,
		httpClose: &http.Client{Timeout: 2 * time.Second},
	}
}

// Serve runs the player child process until ctx is cancelled, restarting
// it after restartBackoff on any unexpected exit and reconnecting the
// client (re-posting window/channel definitions) after every start.
func (s *Supervisor) Serve(ctx context.Context) error {
	s.log.Info().Str("command", s.command).Msg("media player supervisor starting")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cmd := exec.CommandContext(ctx, s.command, s.args...)
		if err := cmd.Start(); err != nil {
			s.log.Error().Err(err).Msg("failed to start media player")
			if !sleepOrDone(ctx, restartBackoff) {
				return ctx.Err()
			}
			continue
		}

		if s.client != nil {
			if err := s.client.Connect(ctx); err != nil {
				s.log.Warn().Err(err).Msg("media player connect failed")
			}
		}

		err := cmd.Wait()
		if ctx.Err() != nil {
			s.notifyClose()
			return ctx.Err()
		}

		s.log.Warn().Err(err).Msg("media player exited unexpectedly, restarting")
		metrics.RecordSupervisorRestart("media")
		if !sleepOrDone(ctx, restartBackoff) {
			return ctx.Err()
		}
	}
}

func (s *Supervisor) notifyClose() {
	if s.closeURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.closeURL, nil)
	if err != nil {
		return
	}
	resp, err := s.httpClose.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
