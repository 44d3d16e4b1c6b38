package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/cli"
	"stagehand/internal/config"
	"stagehand/internal/device"
	"stagehand/internal/scope"
)

// environmentDocument is the json/yaml form of a loaded environment.
type environmentDocument struct {
	Name          string          `json:"name"`
	DefaultScope  scope.Scope     `json:"defaultScope"`
	DriverTimeout string          `json:"driverTimeout"`
	Devices       []device.Device `json:"devices"`
}

func newDevicesCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the devices of an environment file",
		Long: `Load and validate an environment file and list its devices with the
scope each one is shared at. Devices without an explicit scope show the
environment's default scope.

Examples:
  stagehand devices
  stagehand devices --env nightly.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(cmd, flags)
		},
	}
	cli.RegisterCommonFlags(cmd, flags)
	return cmd
}

func runDevices(cmd *cobra.Command, flags *cli.CommandFlags) error {
	p, err := cli.NewPrinter(cmd.OutOrStdout(), flags)
	if err != nil {
		return err
	}
	env, err := loadEnvironment(flags)
	if err != nil {
		return err
	}

	doc := environmentDocument{
		Name:          env.Name(),
		DefaultScope:  env.DefaultScope(),
		DriverTimeout: env.DriverTimeout().String(),
	}
	rows := make([][]string, 0, len(env.Devices()))
	for _, d := range env.Devices() {
		effective := *d
		effective.Scope = env.ScopeFor(d)
		doc.Devices = append(doc.Devices, effective)

		rows = append(rows, []string{
			d.Name,
			string(d.Type),
			effective.Scope.String(),
			platform(d),
			versions(d),
			resolution(d.Resolution),
		})
	}

	if err := p.Print(doc, []string{"name", "type", "scope", "platform", "version", "resolution"}, rows); err != nil {
		return err
	}
	if p.Format() == cli.OutputFormatTable {
		fmt.Fprintln(p.Writer(), cli.Muted(fmt.Sprintf("Environment %s: default scope %s, driver timeout %s",
			doc.Name, doc.DefaultScope, doc.DriverTimeout)))
	}
	return nil
}

// loadEnvironment reads the environment selected by --env, $STAGEHAND_ENV or
// the default file name.
func loadEnvironment(flags *cli.CommandFlags) (*device.Environment, error) {
	return config.NewFileProvider(flags.EnvFile).Environment()
}

func platform(d *device.Device) string {
	var parts []string
	switch d.Type {
	case device.TypeWeb:
		parts = append(parts, string(d.Browser), string(d.OS))
	case device.TypeMobile:
		parts = append(parts, string(d.MobileOS))
		if d.Simulator {
			parts = append(parts, "simulator")
		}
	default:
		parts = append(parts, string(d.OS))
	}
	return joinNonEmpty(parts, "/")
}

func versions(d *device.Device) string {
	return joinNonEmpty([]string{d.BrowserVersion, d.OSVersion}, "/")
}

func resolution(r device.Resolution) string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
