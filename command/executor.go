package command

import (
	"context"
	"os/exec"
)

// Executor makes the exec.Cmd for a run. Tests substitute one that points
// at a fake binary.
type Executor interface {
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// OSExecutor resolves programs on PATH with os/exec.
type OSExecutor struct{}

// CommandContext returns exec.CommandContext(ctx, name, args...).
func (OSExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
