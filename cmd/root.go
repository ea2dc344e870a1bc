package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/aist/internal/config"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// verbose enables timing lines and unabridged listings.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "aist",
	Short: "Analyse AI coding session transcripts for wasted time",
	Long: `aist reads the JSONL transcripts written by AI coding assistants,
classifies where session time went and flags bottlenecks such as error
loops, exploration spirals, edit thrashing and long gaps.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load and merge config files, then apply the environment.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		if err := config.ApplyEnv(&cfg); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show timing and full listings")
}
