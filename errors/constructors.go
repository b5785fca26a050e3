package errors

import (
	"fmt"
	"os/exec"
)

// NoArchive is raised when neither an argument nor a pinned reference names the archive.
func NoArchive(pinFile string) *RnsError {
	return New(ErrCodeNoArchive,
		fmt.Sprintf("no archive given and no valid %s file found", pinFile)).
		WithDetail("pinFile", pinFile)
}

// FolderMissing creates a missing working directory error
func FolderMissing(path string) *RnsError {
	return New(ErrCodeFolderMissing, fmt.Sprintf("no existing repo folder '%s'", path)).
		WithDetail("path", path)
}

// NotRepository creates an error for a working directory without version-control metadata
func NotRepository(path string) *RnsError {
	return New(ErrCodeNotRepository, fmt.Sprintf("no existing git repo in folder '%s'", path)).
		WithDetail("path", path)
}

// ArchiveMissing creates an error for an archive that is not on disk
func ArchiveMissing(path string) *RnsError {
	return New(ErrCodeArchiveMissing, fmt.Sprintf("archive not found: %s", path)).
		WithDetail("path", path)
}

// CheckoutFailed carries the raw tool output so the user can see why
func CheckoutFailed(branch, output string) *RnsError {
	return New(ErrCodeCheckoutFailed, fmt.Sprintf("failed to checkout branch '%s'", branch)).
		WithDetail("branch", branch).
		WithDetail("output", output)
}

// MergeFailed creates a failed merge error
func MergeFailed(branch, output string) *RnsError {
	return New(ErrCodeMergeFailed, fmt.Sprintf("failed to merge branch '%s'", branch)).
		WithDetail("branch", branch).
		WithDetail("output", output)
}

// ParseError creates an error for tool output that lacks an expected marker
func ParseError(what, output string) *RnsError {
	return New(ErrCodeParse, fmt.Sprintf("could not parse %s", what)).
		WithDetail("output", output)
}

// PackFailed creates a packing failure error
func PackFailed(archive string, cause error) *RnsError {
	return Wrap(cause, ErrCodePackFailed, fmt.Sprintf("failed to pack %s", archive)).
		WithDetail("archive", archive)
}

// ExtractFailed creates an extraction failure error
func ExtractFailed(archive string, cause error) *RnsError {
	return Wrap(cause, ErrCodeExtractFailed, fmt.Sprintf("failed to extract %s", archive)).
		WithDetail("archive", archive)
}

// Locked reports the holder of a project lock
func Locked(path string, pid int) *RnsError {
	return New(ErrCodeLocked, fmt.Sprintf("project is locked by process %d", pid)).
		WithDetail("path", path).
		WithDetail("pid", pid)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *RnsError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// CommandNotFound creates an error for a tool that is not installed
func CommandNotFound(cmd string, err error) *RnsError {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", cmd)).
		WithDetail("command", cmd)
}

// CommandTimeout creates an error for a tool that did not finish in time
func CommandTimeout(cmd string, timeout string) *RnsError {
	return New(ErrCodeCommandTimeout, fmt.Sprintf("command timed out after %s: %s", timeout, cmd)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *RnsError {
	rnsErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		rnsErr = rnsErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return rnsErr
}
