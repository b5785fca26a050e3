package cmd

import (
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "branch [name]",
		Aliases: []string{"br"},
		Short:   "Create and switch to a branch, or list branches",
		Long: `With a name, creates the branch and checks it out. Without one, lists
the local branches. Flags such as -d are handed to git branch.

Examples:
  rnsgit br idea song.xrns
  rnsgit br -d idea song.xrns`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				res, err := a.session.Git(cmd.Context(), a.archive, "branch")
				if err != nil {
					return err
				}
				return a.showOutput(res)
			}
			switched, err := a.session.Branch(cmd.Context(), a.archive, args[0])
			if err != nil {
				return err
			}
			return a.emit(map[string]interface{}{"branch": args[0], "switched": switched}, func() {
				if switched {
					a.pretty.Success("Switched to branch " + args[0])
				}
			})
		},
	}
}

func newBranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List local and remote branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Branches(cmd.Context(), a.archive)
			if err != nil {
				return err
			}
			return a.showOutput(res)
		},
	}
}

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "checkout <branch> [suffix]",
		Aliases: []string{"co"},
		Short:   "Switch branch and pack it into a song",
		Long: `Checks out the branch and packs the working tree. With a suffix the
song is written as <name><suffix>.xrns so both versions can be opened
side by side.

Examples:
  rnsgit co idea song.xrns
  rnsgit co idea -idea song.xrns`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			var suffix string
			if len(args) > 1 {
				suffix = args[1]
			}
			res, err := a.session.Checkout(cmd.Context(), a.archive, args[0], suffix)
			if err != nil {
				return err
			}
			return a.showPack(res)
		},
	}
}

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch and pack the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Merge(cmd.Context(), a.archive, args[0])
			if err != nil {
				return err
			}
			return a.showPack(res)
		},
	}
}

func newNiceMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nice-merge",
		Short: "Pick a branch to merge from a numbered list",
		Long: `Lists the other branches, reads the number of the one to merge from
standard input, merges it and packs the result. Anything but a listed
number cancels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.InteractiveMerge(cmd.Context(), a.archive, cmd.InOrStdin(), a.pretty)
			if err != nil || res == nil {
				return err
			}
			return a.showPack(res)
		},
	}
}
