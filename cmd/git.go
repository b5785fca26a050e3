package cmd

import (
	"github.com/spf13/cobra"
)

// newGitCmd runs git in the song repository. Commands rnsgit does not
// know are routed here, so "rnsgit log" is "rnsgit git -- log".
func newGitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "git -- <args>...",
		Short: "Run git inside the song repository",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Git(cmd.Context(), a.archive, args...)
			if err != nil {
				return err
			}
			a.pretty.Code(res.Output)
			if !res.Success() {
				return &ExitError{Code: res.ExitCode}
			}
			return nil
		},
	}
}
