// Package cli provides the command-line interface
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kokjohn0824/financial-researcher/internal/config"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
	"github.com/kokjohn0824/financial-researcher/internal/ui"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	dryRun    bool
	verbose   bool
	debug     bool
	quiet     bool
	model     string
	outputDir string

	// Research flags
	company string

	// Global config
	cfg *config.Config
)

// rootCmd runs one research kickoff when called without a subcommand
var rootCmd = &cobra.Command{
	Use:           "financial-researcher",
	Short:         i18n.CmdRootShort,
	Long:          i18n.CmdRootLong,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for some commands
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf(i18n.ErrLoadConfigFailed, err)
		}

		// Override with flags
		if dryRun {
			cfg.DryRun = true
		}
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
			cfg.Verbose = true // debug implies verbose
		}
		if quiet {
			cfg.Quiet = true
			cfg.Verbose = false
		}
		if model != "" {
			cfg.Model = model
		}
		if outputDir != "" {
			cfg.OutputDir, err = filepath.Abs(outputDir)
			if err != nil {
				return fmt.Errorf(i18n.ErrLoadConfigFailed, err)
			}
		}

		return cfg.Validate()
	},
	RunE: runResearch,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports err on w; in debug mode every wrapped cause follows.
func printError(w io.Writer, err error) {
	ui.PrintError(w, fmt.Sprintf(i18n.MsgErrorDetail, err))
	if !debugEnabled() {
		return
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintln(w, ui.StyleMuted.Render(fmt.Sprintf(i18n.MsgErrorCause, cause)))
	}
}

// debugEnabled reports the resolved debug setting, falling back to the flag
// when the config could not be loaded.
func debugEnabled() bool {
	if cfg != nil {
		return cfg.Debug
	}
	return debug
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", i18n.FlagConfig)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, i18n.FlagDryRun)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.FlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, i18n.FlagDebug)
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, i18n.FlagQuiet)
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", i18n.FlagModel)
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", i18n.FlagOutputDir)

	rootCmd.Flags().StringVarP(&company, "company", "c", "", i18n.FlagCompany)

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: i18n.CmdVersionShort,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Financial Researcher %s\n", Version)
		fmt.Fprintf(w, "  Commit: %s\n", Commit)
		fmt.Fprintf(w, "  Built:  %s\n", BuildDate)
	},
}
