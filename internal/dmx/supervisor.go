package dmx

import (
	"context"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/metrics"
)

const restartBackoff = 2 * time.Second

// Supervisor optionally spawns the Vulcan controller as a child process
// and restarts it on unexpected exit, satisfying suture.Service so it can
// be registered directly on the supervision tree.
type Supervisor struct {
	log     zerolog.Logger
	command string
	args    []string
	client  *Client
}

// NewSupervisor builds a Supervisor that runs command/args as the
// controller's child process and notifies client on shutdown.
func NewSupervisor(log zerolog.Logger, command string, args []string, client *Client) *Supervisor {
	return &Supervisor{
		log:     log.With().Str("component", "dmx_supervisor").Logger(),
		command: command,
		args:    args,
		client:  client,
	}
}

// Serve runs the controller child process until ctx is cancelled,
// restarting it after restartBackoff on any unexpected exit.
func (s *Supervisor) Serve(ctx context.Context) error {
	s.log.Info().Str("command", s.command).Msg("dmx controller supervisor starting")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cmd := exec.CommandContext(ctx, s.command, s.args...)
		if err := cmd.Start(); err != nil {
			s.log.Error().Err(err).Msg("failed to start dmx controller")
			if !sleepOrDone(ctx, restartBackoff) {
				return ctx.Err()
			}
			continue
		}

		err := cmd.Wait()
		if ctx.Err() != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if s.client != nil {
				_ = s.client.Close(closeCtx)
			}
			cancel()
			return ctx.Err()
		}

		s.log.Warn().Err(err).Msg("dmx controller exited unexpectedly, restarting")
		metrics.RecordSupervisorRestart("dmx")
		if !sleepOrDone(ctx, restartBackoff) {
			return ctx.Err()
		}
	}
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
