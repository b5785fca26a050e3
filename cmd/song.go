package cmd

import (
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [message]",
		Short: "Create the song repository and commit the archive",
		Long: `Expands the song into a folder named after it, creating a git
repository there on first use, and commits the expanded files.

Examples:
  rnsgit init song.xrns
  rnsgit init "First sketch" song.xrns`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Init(cmd.Context(), a.archive, firstArg(args))
			if err != nil {
				return err
			}
			return a.showMaterialize(res)
		},
	}
}

func newUnzipCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unzip",
		Aliases: []string{"extract"},
		Short:   "Expand the archive into the repository and commit",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Unzip(cmd.Context(), a.archive)
			if err != nil {
				return err
			}
			return a.showMaterialize(res)
		},
	}
}

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "commit [message]",
		Aliases: []string{"ci"},
		Short:   "Commit the song as saved by Renoise",
		Long: `Expands the saved song over the repository and commits every change.
Without a message the commit is titled after the archive.

Examples:
  rnsgit ci "Louder drums" song.xrns`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Commit(cmd.Context(), a.archive, firstArg(args))
			if err != nil {
				return err
			}
			return a.showMaterialize(res)
		},
	}
}

func newZipCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "zip",
		Aliases: []string{"build", "make", "xrns"},
		Short:   "Pack the repository into the song archive",
		Long: `Builds the song archive from the files of the repository's working
tree. The previous archive is kept aside until the new one is verified.

Examples:
  rnsgit zip song.xrns`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			res, err := a.session.Pack(cmd.Context(), a.archive)
			if err != nil {
				return err
			}
			return a.showPack(res)
		},
	}
}

func newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "pin",
		Aliases: []string{"set"},
		Short:   "Make a song the default for this directory",
		Long: `Records the song in the .rnsgit file so later commands can omit it.

Examples:
  rnsgit pin song.xrns
  rnsgit ci`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			p, err := a.session.Pin(a.archive)
			if err != nil {
				return err
			}
			return a.emit(p, func() {
				a.pretty.Success("Pinned " + p.Archive)
			})
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
