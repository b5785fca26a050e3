package cmd

import (
	"context"
	"slices"
	"strings"

	"github.com/grovetools/rnsgit/archive"
	"github.com/grovetools/rnsgit/cli"
	"github.com/grovetools/rnsgit/pkg/profiling"
	"github.com/grovetools/rnsgit/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// builtins are names cobra handles without a registered subcommand.
var builtins = map[string]bool{
	"help":                          true,
	"completion":                    true,
	cobra.ShellCompRequestCmd:       true,
	cobra.ShellCompNoDescRequestCmd: true,
}

// NewRootCmd creates the rnsgit command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand("rnsgit", "Keep Renoise songs under git")
	root.Long = `Expands a Renoise .xrns song into a git repository next to it and
packs the repository back into the song. Any command rnsgit does not know
is run as a git command inside the song's repository.

The song is the last argument ending in .xrns, the --archive flag, or the
song pinned with 'rnsgit pin'.

Examples:
  # Start tracking a song
  rnsgit init song.xrns

  # Commit after saving in Renoise
  rnsgit commit "Added bassline" song.xrns

  # Try an idea on a branch and open it as song-idea.xrns
  rnsgit br idea song.xrns
  rnsgit co idea -idea song.xrns

  # Plain git inside the repository
  rnsgit log --oneline song.xrns`
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentFlags().StringP("dir", "C", "", "Run as if rnsgit was started in this directory")

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(root)
	root.PersistentPreRunE = profiler.PreRun
	root.PersistentPostRun = profiler.PostRun

	cli.SetVersionTemplate(root, version.GetInfo())

	root.AddCommand(
		newInitCmd(),
		newUnzipCmd(),
		newCommitCmd(),
		newZipCmd(),
		newPinCmd(),
		newBranchCmd(),
		newBranchesCmd(),
		newCheckoutCmd(),
		newMergeCmd(),
		newNiceMergeCmd(),
		newStatusCmd(),
		newVerifyCmd(),
		newRecoverCmd(),
		newWatchCmd(),
		newConfigCmd(),
		newGitCmd(),
		cli.NewVersionCommand("rnsgit"),
	)

	cli.ApplyStyledHelpRecursive(root)
	return root
}

// Execute routes args through the command tree. Errors are reported on
// stderr before they are returned.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	routed, song := RouteArgs(root, args)
	root.SetArgs(routed)

	err := root.ExecuteContext(withArchive(ctx, song))
	if err == nil {
		return nil
	}
	if _, ok := err.(*ExitError); ok {
		return err
	}
	return newErrorHandler(root).Handle(err)
}

// newErrorHandler reports to stderr; a missing song also prints root usage.
func newErrorHandler(root *cobra.Command) *cli.ErrorHandler {
	verbose, _ := root.PersistentFlags().GetBool("verbose")
	h := cli.NewErrorHandler(verbose)
	h.Usage = func() string { return cli.UsageText(root) }
	return h
}

// RouteArgs prepares raw command-line arguments for the command tree. A
// trailing .xrns argument is taken out and returned as the song. Unknown
// commands, and "branch" followed by a flag, become git passthroughs whose
// arguments follow a "--" so flags reach git untouched. A checkout suffix
// that starts with a dash is kept as an argument.
func RouteArgs(root *cobra.Command, args []string) ([]string, string) {
	routed := append([]string(nil), args...)

	var song string
	if n := len(routed); n > 0 && isArchiveArg(routed[n-1]) {
		song = routed[n-1]
		routed = routed[:n-1]
		if n > 1 && isArchiveFlag(routed[n-2]) {
			routed = routed[:n-2]
		}
	}

	i := commandIndex(root, routed)
	if i < 0 {
		return routed, song
	}
	lead, name, rest := routed[:i], routed[i], routed[i+1:]

	var passthrough []string
	switch sub := lookup(root, name); {
	case builtins[name]:
		return routed, song
	case sub == nil:
		passthrough = append([]string{name}, rest...)
	case sub.Name() == "git":
		if len(rest) > 0 && rest[0] == "--" {
			rest = rest[1:]
		}
		passthrough = rest
	case sub.Name() == "branch" && len(rest) > 0 && isPassthroughFlag(rest[0]):
		passthrough = append([]string{"branch"}, rest...)
	case sub.Name() == "checkout" && len(rest) > 1 && isPassthroughFlag(rest[len(rest)-1]) && !slices.Contains(rest, "--"):
		// A suffix such as "-idea" is an argument, not shorthand flags.
		last := len(rest) - 1
		out := append(append([]string(nil), routed[:i+1+last]...), "--", rest[last])
		return out, song
	default:
		return routed, song
	}

	out := append(append([]string(nil), lead...), "git", "--")
	return append(out, passthrough...), song
}

// commandIndex returns the position of the first argument that is not a
// root flag or a root flag's value, or -1.
func commandIndex(root *cobra.Command, args []string) int {
	flags := root.PersistentFlags()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return -1
		case arg == "-" || !strings.HasPrefix(arg, "-"):
			return i
		case strings.Contains(arg, "="):
			continue
		}
		var f *pflag.Flag
		if strings.HasPrefix(arg, "--") {
			f = flags.Lookup(arg[2:])
		} else if len(arg) == 2 {
			f = flags.ShorthandLookup(arg[1:])
		}
		if f != nil && f.NoOptDefVal == "" {
			i++
		}
	}
	return -1
}

func lookup(root *cobra.Command, name string) *cobra.Command {
	for _, c := range root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return c
		}
	}
	return nil
}

func isArchiveArg(arg string) bool {
	return !strings.HasPrefix(arg, "-") && strings.HasSuffix(strings.ToLower(arg), archive.Extension)
}

func isArchiveFlag(arg string) bool {
	return arg == "-a" || arg == "--archive"
}

func isPassthroughFlag(arg string) bool {
	return strings.HasPrefix(arg, "-") && arg != "-h" && arg != "--help"
}
