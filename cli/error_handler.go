package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/rnsgit/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
	// Usage renders the command usage shown when no song can be resolved
	Usage func() string
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints err with a hint for the codes users can act on, and
// returns it unchanged
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	rnsErr, _ := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeNoArchive:
		fmt.Fprintf(h.Out, "❌ No song given. Pass a .xrns file or run 'rnsgit pin song.xrns' first.\n")
		if h.Usage != nil {
			fmt.Fprintf(h.Out, "\n%s", h.Usage())
		}

	case errors.ErrCodeFolderMissing, errors.ErrCodeNotRepository:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		fmt.Fprintf(h.Out, "Run 'rnsgit init song.xrns' to create the repository.\n")

	case errors.ErrCodeArchiveMissing:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		fmt.Fprintf(h.Out, "Run 'rnsgit zip' to rebuild the archive from the repository.\n")

	case errors.ErrCodeCheckoutFailed, errors.ErrCodeMergeFailed:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		if rnsErr != nil {
			if out, ok := rnsErr.Details["output"].(string); ok && out != "" {
				fmt.Fprintf(h.Out, "%s\n", out)
			}
		}
		fmt.Fprintf(h.Out, "The archive was not rebuilt. Resolve the repository state with 'rnsgit status'.\n")

	case errors.ErrCodePackFailed:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		fmt.Fprintf(h.Out, "The previous archive is kept as a stash. Run 'rnsgit recover' to restore it.\n")

	case errors.ErrCodeVerifyFailed:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		fmt.Fprintf(h.Out, "Run 'rnsgit ci' to commit the saved song, or 'rnsgit zip' to rebuild it.\n")

	case errors.ErrCodeLocked:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		if rnsErr != nil {
			fmt.Fprintf(h.Out, "Wait for it to finish, or remove %v if it is gone.\n", rnsErr.Details["path"])
		}

	case errors.ErrCodeCommandNotFound:
		fmt.Fprintf(h.Out, "❌ Required command not found. Make sure git (and 7z, unless archiver.kind is zip) are installed.\n")

	case errors.ErrCodeCommandTimeout:
		fmt.Fprintf(h.Out, "❌ %v\n", err)
		fmt.Fprintf(h.Out, "Raise 'timeout' in rnsgit.yml for large songs.\n")

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose && rnsErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", rnsErr.ToJSON())
	}
	return err
}
