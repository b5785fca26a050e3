package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

var validProjectName = regexp.MustCompile(`^[^/\\\x00]+$`)

// SafeBuilder builds commands with a bounded timeout and validates the
// user-supplied values that end up in their argument lists.
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a SafeBuilder over OSExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(OSExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// SetDefaultTimeout changes the timeout applied to every built command.
// Values above MaxTimeout are capped, non-positive values are ignored.
func (sb *SafeBuilder) SetDefaultTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	sb.defaultTimeout = timeout
}

// DefaultTimeout returns the timeout applied to built commands.
func (sb *SafeBuilder) DefaultTimeout() time.Duration {
	return sb.defaultTimeout
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"projectName": validateProjectName,
		"archiveName": validateArchiveName,
		"fileName":    validateFileName,
		"gitRef":      validateGitRef,
	}
}

// validateProjectName ensures a project name can be used as a single directory name
func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid project name: %s", name)
	}
	if !validProjectName.MatchString(name) {
		return fmt.Errorf("invalid project name: %s (must not contain path separators)", name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid project name: %s (hidden names are excluded from packing)", name)
	}
	return nil
}

// validateArchiveName ensures the archive is a bare .xrns file name
func validateArchiveName(name string) error {
	if !strings.HasSuffix(name, ".xrns") {
		return fmt.Errorf("invalid archive name: %s (must end in .xrns)", name)
	}
	return validateProjectName(strings.TrimSuffix(name, ".xrns"))
}

// validateFileName ensures a slash-separated relative path stays inside its
// root. Callers pass it after "--", so a leading dash is allowed.
func validateFileName(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("file path must be relative: %s", path)
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return fmt.Errorf("file path cannot contain '..'")
		}
	}
	return nil
}

// validateGitRef rejects refs git would read as an option. Anything else
// goes to git as a single argv entry, and git judges the name itself.
func validateGitRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("git ref cannot be empty")
	}
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("invalid git ref: %s (must not start with '-')", ref)
	}
	if strings.ContainsRune(ref, 0) {
		return fmt.Errorf("invalid git ref: contains NUL")
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
	runCtx   context.Context
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	return &Command{
		ctx:      ctx,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	c.timeout = timeout
	return c
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Exec creates an exec.Cmd bound to a timeout context. The returned cancel
// func must be called once the command has finished.
func (c *Command) Exec() (*exec.Cmd, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.runCtx = ctx
	return c.executor.CommandContext(ctx, c.name, c.args...), cancel //nolint:gosec // SafeBuilder provides validation
}

// TimedOut reports whether the last Exec context expired before the command
// finished.
func (c *Command) TimedOut() bool {
	return c.runCtx != nil && c.runCtx.Err() == context.DeadlineExceeded
}
