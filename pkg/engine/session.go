package engine

import (
	"context"
	"io"

	"github.com/grovetools/rnsgit/command"
	"github.com/grovetools/rnsgit/config"
	"github.com/grovetools/rnsgit/errors"
	"github.com/grovetools/rnsgit/git"
	"github.com/grovetools/rnsgit/internal/lockfile"
	"github.com/grovetools/rnsgit/logging"
	"github.com/grovetools/rnsgit/pkg/project"
	"github.com/sirupsen/logrus"
)

// Default commit messages
const (
	InitMessage  = "New repo"
	UnzipMessage = "Unzipped current xrns"
)

// CommitMessage is the default message of a commit from archive.
func CommitMessage(archive string) string {
	return "Updated from " + archive
}

// State is a phase of one session run.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateMaterializing
	StatePacking
	StateBranchSwitching
	StateMerging
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateMaterializing:
		return "materializing"
	case StatePacking:
		return "packing"
	case StateBranchSwitching:
		return "branch-switching"
	case StateMerging:
		return "merging"
	default:
		return "idle"
	}
}

// Session sequences one logical operation at a time against the projects
// of a base directory. Each call runs Idle, Resolving, one working state,
// and back to Idle; working states hold the project lock.
type Session struct {
	engine       *Engine
	baseDir      string
	state        State
	onTransition func(from, to State)
	logger       *logrus.Entry
}

// NewSession creates a session rooted at baseDir.
func NewSession(engine *Engine, baseDir string) *Session {
	return &Session{
		engine:  engine,
		baseDir: baseDir,
		state:   StateIdle,
		logger:  logging.NewLogger("rnsgit-session"),
	}
}

// OnTransition registers a callback run on every state change.
func (s *Session) OnTransition(fn func(from, to State)) {
	s.onTransition = fn
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Engine returns the underlying engine.
func (s *Session) Engine() *Engine {
	return s.engine
}

// BaseDir returns the directory holding archives and working directories.
func (s *Session) BaseDir() string {
	return s.baseDir
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	s.logger.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Debug("State change")
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

// Resolve names the project from archive, or from the pinned reference
// when archive is empty.
func (s *Session) Resolve(archive string) (*project.Project, error) {
	if archive == "" {
		pinned, err := config.ReadPinned(s.baseDir)
		if err != nil {
			if errors.Is(err, errors.ErrCodeConfigNotFound) {
				return nil, errors.NoArchive(config.PinFileName)
			}
			return nil, err
		}
		archive = pinned
	}
	return project.FromArchive(s.baseDir, archive)
}

// resolve runs the Resolving phase and returns to Idle on failure.
func (s *Session) resolve(archive string) (*project.Project, error) {
	s.transition(StateResolving)
	p, err := s.Resolve(archive)
	if err != nil {
		s.transition(StateIdle)
		return nil, err
	}
	return p, nil
}

// run drives one working state under the project lock.
func (s *Session) run(archive string, working State, fn func(p *project.Project) error) error {
	p, err := s.resolve(archive)
	if err != nil {
		return err
	}
	defer s.transition(StateIdle)

	lock, err := lockfile.Acquire(p.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.logger.WithError(err).Warn("Failed to release project lock")
		}
	}()

	s.transition(working)
	return fn(p)
}

// inspect runs a read-only operation: it resolves and returns to Idle
// without taking the lock.
func (s *Session) inspect(archive string, fn func(p *project.Project) error) error {
	p, err := s.resolve(archive)
	if err != nil {
		return err
	}
	defer s.transition(StateIdle)
	return fn(p)
}

// Init materializes the archive, initializing version control on first use.
func (s *Session) Init(ctx context.Context, archive, message string) (*MaterializeResult, error) {
	if message == "" {
		message = InitMessage
	}
	return s.materialize(ctx, archive, message)
}

// Unzip re-expands the archive into the repository and commits.
func (s *Session) Unzip(ctx context.Context, archive string) (*MaterializeResult, error) {
	return s.materialize(ctx, archive, UnzipMessage)
}

// Commit records the archive's current content in the repository.
func (s *Session) Commit(ctx context.Context, archive, message string) (*MaterializeResult, error) {
	return s.materialize(ctx, archive, message)
}

func (s *Session) materialize(ctx context.Context, archive, message string) (*MaterializeResult, error) {
	var result *MaterializeResult
	err := s.run(archive, StateMaterializing, func(p *project.Project) error {
		if message == "" {
			message = CommitMessage(p.Archive)
		}
		var err error
		result, err = s.engine.Materialize(ctx, p, message)
		return err
	})
	return result, err
}

// Pack builds the project's archive from the working directory.
func (s *Session) Pack(ctx context.Context, archive string) (*PackResult, error) {
	var result *PackResult
	err := s.run(archive, StatePacking, func(p *project.Project) error {
		var err error
		result, err = s.engine.Pack(ctx, p, p.Archive)
		return err
	})
	return result, err
}

// Recover finishes or rolls back an interrupted pack of the archive.
func (s *Session) Recover(archive string) (*Recovery, error) {
	var result *Recovery
	err := s.run(archive, StatePacking, func(p *project.Project) error {
		var err error
		result, err = s.engine.Recover(p, p.Archive)
		return err
	})
	return result, err
}

// Checkout switches to branch and packs <project><modifier>.xrns.
func (s *Session) Checkout(ctx context.Context, archive, branch, modifier string) (*PackResult, error) {
	var result *PackResult
	err := s.run(archive, StateBranchSwitching, func(p *project.Project) error {
		var err error
		result, err = s.engine.FromBranch(ctx, p, branch, modifier)
		return err
	})
	return result, err
}

// Branch creates branch and checks it out.
func (s *Session) Branch(ctx context.Context, archive, branch string) (bool, error) {
	var switched bool
	err := s.run(archive, StateBranchSwitching, func(p *project.Project) error {
		var err error
		switched, err = s.engine.CreateBranch(ctx, p, branch)
		return err
	})
	return switched, err
}

// Merge merges branch into the current branch and packs the result.
func (s *Session) Merge(ctx context.Context, archive, branch string) (*PackResult, error) {
	var result *PackResult
	err := s.run(archive, StateMerging, func(p *project.Project) error {
		var err error
		result, err = s.engine.Merge(ctx, p, branch)
		return err
	})
	return result, err
}

// InteractiveMerge asks which branch to merge, reading the answer from in.
// A nil result with a nil error means the user cancelled.
func (s *Session) InteractiveMerge(ctx context.Context, archive string, in io.Reader, out *logging.PrettyLogger) (*PackResult, error) {
	var result *PackResult
	err := s.run(archive, StateMerging, func(p *project.Project) error {
		var err error
		result, err = s.engine.InteractiveMerge(ctx, p, in, out)
		return err
	})
	return result, err
}

// Verify compares the archive with the working directory.
func (s *Session) Verify(ctx context.Context, archive string) (*VerifyResult, error) {
	var result *VerifyResult
	err := s.inspect(archive, func(p *project.Project) error {
		var err error
		result, err = s.engine.Verify(ctx, p)
		return err
	})
	return result, err
}

// Pin records the resolved archive as the pinned reference.
func (s *Session) Pin(archive string) (*project.Project, error) {
	var pinned *project.Project
	err := s.inspect(archive, func(p *project.Project) error {
		pinned = p
		return config.WritePinned(s.baseDir, p.Archive)
	})
	return pinned, err
}

// Status returns the repository status.
func (s *Session) Status(ctx context.Context, archive string) (command.Result, error) {
	return s.Git(ctx, archive, "status")
}

// Branches lists every branch, remote ones included.
func (s *Session) Branches(ctx context.Context, archive string) (command.Result, error) {
	return s.Git(ctx, archive, "branch", "--all")
}

// Git forwards args verbatim to git inside the project's repository.
func (s *Session) Git(ctx context.Context, archive string, args ...string) (command.Result, error) {
	var result command.Result
	err := s.inspect(archive, func(p *project.Project) error {
		if err := s.engine.requireRepository(p); err != nil {
			return err
		}
		var err error
		result, err = s.engine.git.Exec(ctx, p.WorkDir(), args...)
		return err
	})
	return result, err
}

// Summary returns status counts for the project's repository.
func (s *Session) Summary(ctx context.Context, archive string) (*git.StatusInfo, error) {
	var info *git.StatusInfo
	err := s.inspect(archive, func(p *project.Project) error {
		if err := s.engine.requireRepository(p); err != nil {
			return err
		}
		var err error
		info, err = s.engine.git.Summary(ctx, p.WorkDir())
		return err
	})
	return info, err
}
