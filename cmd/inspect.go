package cmd

import (
	"fmt"

	"github.com/grovetools/rnsgit/errors"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show the repository status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if !summary {
				res, err := a.session.Status(cmd.Context(), a.archive)
				if err != nil {
					return err
				}
				return a.showOutput(res)
			}
			info, err := a.session.Summary(cmd.Context(), a.archive)
			if err != nil {
				return err
			}
			return a.emit(info, func() {
				a.pretty.Field("Branch", info.Branch)
				if info.IsDirty {
					a.pretty.WarnPretty(fmt.Sprintf("%d modified, %d staged, %d untracked",
						info.ModifiedCount, info.StagedCount, info.UntrackedCount))
				} else {
					a.pretty.Success("Clean")
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "Print change counts instead of git's status")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the archive matches the working tree",
		Long: `Expands the archive into a scratch directory and compares its files
and content with the repository's working tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Verify(cmd.Context(), a.archive)
			if err != nil {
				return err
			}
			if err := a.emit(res, func() {
				if res.InSync() {
					a.pretty.Success(res.Archive + " matches the working tree")
					return
				}
				for _, name := range res.Missing {
					a.pretty.Field("Missing from archive", name)
				}
				for _, name := range res.Extra {
					a.pretty.Field("Only in archive", name)
				}
			}); err != nil {
				return err
			}
			if !res.InSync() {
				return errors.New(errors.ErrCodeVerifyFailed, "archive differs from the working tree").
					WithDetail("archive", res.Archive)
			}
			return nil
		},
	}
}

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Finish or roll back an interrupted pack",
		Long: `Inspects the files an interrupted pack left behind. A verified new
archive is kept and the stash removed; otherwise the stashed archive is
put back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Recover(a.archive)
			if err != nil {
				return err
			}
			return a.emit(res, func() {
				a.pretty.Field("Found", res.Found)
				a.pretty.Field("Action", res.Action)
				a.pretty.Success(res.Archive + " is " + res.Final.String())
			})
		},
	}
}
