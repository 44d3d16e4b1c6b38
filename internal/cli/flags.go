package cli

import (
	"github.com/spf13/cobra"
)

// CommandFlags holds the flag values shared by commands that read an
// environment file and print a result.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, json, yaml)
	OutputFormat string
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// EnvFile is the environment file; empty falls back to $STAGEHAND_ENV
	// and then stagehand.yaml
	EnvFile string
}

// RegisterCommonFlags registers the common flags on cmd.
//
// The registered flags are:
//   - --output/-o: Output format (table, json, yaml), default: "table"
//   - --no-headers: Suppress header row in table output
//   - --env/-e: Environment file (env: STAGEHAND_ENV)
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	RegisterEnvFlag(cmd, flags)
}

// RegisterEnvFlag registers only --env, for commands without formatted output.
func RegisterEnvFlag(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().StringVarP(&flags.EnvFile, "env", "e", "", "Environment file (env: STAGEHAND_ENV, default: stagehand.yaml)")
}
