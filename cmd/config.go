package cmd

import (
	"fmt"

	"github.com/grovetools/rnsgit/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows the configuration after merging the layers:
1. Global config ($XDG_CONFIG_HOME/rnsgit/rnsgit.yml)
2. Project config (rnsgit.yml or rnsgit.toml in the song directory)
and applying defaults. Use --config to show a single file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.GetLogger(cmd)
			dir, err := baseDirOf(cmd)
			if err != nil {
				return err
			}
			cfg, err := cli.LoadConfig(cli.GetOptions(cmd), dir)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
