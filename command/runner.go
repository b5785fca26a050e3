package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/logging"
	"github.com/sirupsen/logrus"
)

// Result is the captured outcome of one external program run.
type Result struct {
	// Output holds stdout and stderr interleaved as the program wrote them.
	Output string `json:"output"`
	// ExitCode is the program's exit status.
	ExitCode int `json:"exit_code"`
}

// Success reports whether the program exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs an external program in a directory and captures its result.
// A non-zero exit status is not an error: callers classify the Result
// themselves. An error is returned only when the program could not be
// started or did not finish.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	builder *SafeBuilder
	env     []string
	logger  *logrus.Entry
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates a runner over the given builder.
func NewExecRunner(builder *SafeBuilder) *ExecRunner {
	if builder == nil {
		builder = NewSafeBuilder()
	}
	return &ExecRunner{
		builder: builder,
		logger:  logging.NewLogger("rnsgit-exec"),
	}
}

// WithEnv appends KEY=VALUE pairs to the environment of every run.
func (r *ExecRunner) WithEnv(env ...string) *ExecRunner {
	r.env = append(r.env, env...)
	return r
}

// Run executes name with args with its working directory set to dir. The
// caller's own working directory is never changed.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd, err := r.builder.Build(ctx, name, args...)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to build command")
	}

	execCmd, cancel := cmd.Exec()
	defer cancel()

	execCmd.Dir = dir
	if len(r.env) > 0 {
		execCmd.Env = append(os.Environ(), r.env...)
	}

	var out bytes.Buffer
	execCmd.Stdout = &out
	execCmd.Stderr = &out

	r.logger.WithFields(logrus.Fields{
		"dir": dir,
		"cmd": cmd.String(),
	}).Debug("Running command")

	runErr := execCmd.Run()
	result := Result{Output: out.String(), ExitCode: execCmd.ProcessState.ExitCode()}
	if runErr == nil {
		return result, nil
	}

	if execErr, ok := runErr.(*exec.Error); ok {
		return result, errors.CommandNotFound(name, execErr)
	}
	if cmd.TimedOut() {
		return result, errors.CommandTimeout(cmd.String(), cmd.timeout.String())
	}
	if ctx.Err() != nil {
		return result, errors.Wrap(ctx.Err(), errors.ErrCodeCommandFailed, "command cancelled").
			WithDetail("command", cmd.String())
	}
	if _, ok := runErr.(*exec.ExitError); ok {
		return result, nil
	}
	return result, errors.CommandFailed(cmd.String(), runErr)
}
