package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/rnsgit/pkg/watch"
	"github.com/spf13/cobra"
)

// AutosaveMessage titles commits made by watch.
func AutosaveMessage(at time.Time) string {
	return "Autosave " + at.Format("2006-01-02 15:04:05")
}

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Commit the song every time Renoise saves it",
		Long: `Watches the song archive and commits it once a save has settled.
Stop with Ctrl-C.

Examples:
  rnsgit watch song.xrns
  rnsgit watch --debounce 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			p, err := a.session.Resolve(a.archive)
			if err != nil {
				return err
			}

			onSave := func(ctx context.Context) error {
				res, err := a.session.Commit(ctx, p.Archive, AutosaveMessage(time.Now()))
				if err != nil {
					return err
				}
				return a.showMaterialize(res)
			}
			w, err := watch.NewArchiveWatcher(p.BaseDir, p.Archive, debounce, onSave)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.pretty.InfoPretty("Watching " + p.ArchivePath())
			w.Start(ctx)
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet time after a write before committing")
	return cmd
}
