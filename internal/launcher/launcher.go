// Package launcher starts the dedicated game-server binary once a match is
// ready. It is a thin external collaborator — failure to spawn is logged
// and never aborts the match.
package launcher

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/sonicrain/matchd/internal/domain"
)

// Launcher spawns a dedicated game-server process for a ready match.
type Launcher interface {
	Start(gameID domain.GameID, port uint16) error
}

// ProcessLauncher runs a configured binary with -Port/-gameid arguments.
type ProcessLauncher struct {
	BinaryPath string
	log        *zap.Logger
}

// NewProcessLauncher returns a launcher that execs binaryPath.
func NewProcessLauncher(binaryPath string, log *zap.Logger) *ProcessLauncher {
	return &ProcessLauncher{BinaryPath: binaryPath, log: log}
}

// Start launches the binary detached; it does not wait for exit.
func (l *ProcessLauncher) Start(gameID domain.GameID, port uint16) error {
	cmd := exec.Command(l.BinaryPath,
		fmt.Sprintf("-Port=%d", port),
		"-gameid", fmt.Sprintf("%d", gameID))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launcher: start game %d on port %d: %w", gameID, port, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			l.log.Warn("game server process exited with error",
				zap.Uint64("game_id", uint64(gameID)), zap.Error(err))
		}
	}()
	return nil
}

// NoopLauncher is used in tests and in configurations with no configured
// binary; it only logs.
type NoopLauncher struct {
	log *zap.Logger
}

// NewNoopLauncher returns a launcher that never actually spawns anything.
func NewNoopLauncher(log *zap.Logger) *NoopLauncher {
	return &NoopLauncher{log: log}
}

func (l *NoopLauncher) Start(gameID domain.GameID, port uint16) error {
	l.log.Debug("noop launcher: would start game server",
		zap.Uint64("game_id", uint64(gameID)), zap.Uint16("port", port))
	return nil
}
