package profiling

import (
	"github.com/spf13/cobra"
)

// CobraProfiler wires the --timing flag into a command tree.
type CobraProfiler struct {
	timing bool
}

// NewCobraProfiler creates a profiler for a cobra root command.
func NewCobraProfiler() *CobraProfiler {
	return &CobraProfiler{}
}

// AddFlags adds --timing to cmd and its subcommands.
func (p *CobraProfiler) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&p.timing, "timing", false, "Print how long each phase took")
}

// PreRun is a PersistentPreRunE hook that turns timing on.
func (p *CobraProfiler) PreRun(cmd *cobra.Command, args []string) error {
	if p.timing {
		Enable()
	}
	return nil
}

// PostRun is a PersistentPostRun hook printing the summary to stderr.
func (p *CobraProfiler) PostRun(cmd *cobra.Command, args []string) {
	if p.timing {
		Summarize(cmd.ErrOrStderr())
		Disable()
	}
}
