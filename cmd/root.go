package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stagehand/internal/api"
	"stagehand/internal/cli"
	"stagehand/internal/lifecycle"
	"stagehand/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeNoConfiguration indicates that no usable environment file was found.
	ExitCodeNoConfiguration = lifecycle.ExitNoConfiguration
)

var (
	debug     bool
	logFormat string
	noColor   bool
)

// rootCmd represents the base command for the stagehand application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Inspect and rehearse test environments for stagehand runs",
	Long: `stagehand manages the drivers a parallel test run needs: it binds workers
to test contexts, reuses driver sessions within their declared scope and
releases them when that scope ends.

This CLI inspects the environment file a run would use, explains which
variant candidate wins on a device, and rehearses a run against fake
drivers to check that every session is released.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupOutput(cmd)
	},
}

func setupOutput(cmd *cobra.Command) error {
	level := logging.LevelWarn
	if debug {
		level = logging.LevelDebug
	}
	format := logging.Format(logFormat)
	switch format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unsupported log format: %q (valid: text, json)", logFormat)
	}
	logging.Init(level, cmd.ErrOrStderr(), format)

	if noColor {
		cli.DisableColor()
	}
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stagehand version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if api.IsNoConfiguration(err) {
		return ExitCodeNoConfiguration
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logging.FormatText), "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newSimulateCmd())
}
