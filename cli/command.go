package cli

import (
	"os"

	"github.com/grovetools/rnsgit/config"
	"github.com/grovetools/rnsgit/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds common options for rnsgit commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
	Archive    string
}

// NewStandardCommand creates a new command with the standard rnsgit flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to rnsgit.yml config file")
	cmd.PersistentFlags().StringP("archive", "a", "", "Song archive (.xrns); defaults to the pinned song")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger applies the verbose and json flags to the shared logger
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logging.NewLogger("rnsgit-cli").Logger

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logging.SetLevel(logrus.DebugLevel)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	archive, _ := cmd.Flags().GetString("archive")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
		Archive:    archive,
	}
}

// LoadConfig loads the file named by --config, or the layered configuration
// of baseDir when the flag is empty
func LoadConfig(opts CommandOptions, baseDir string) (*config.Config, error) {
	if opts.ConfigFile != "" {
		return config.Load(opts.ConfigFile)
	}
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		baseDir = cwd
	}
	return config.LoadFrom(baseDir)
}
