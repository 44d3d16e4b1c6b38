// Package cli holds the output helpers shared by the stagehand commands.
//
// # Output Formats
//
// Every listing command accepts --output/-o:
//   - table: rounded go-pretty table with uppercase headers
//   - json: indented JSON of the command's result document
//   - yaml: the same document rendered through sigs.k8s.io/yaml, so field
//     names follow the json tags
//
// Status lines (success, warning, error) are colored with fatih/color and
// fall back to plain text when the output is not a terminal or --no-color is
// given.
//
// # Usage
//
//	flags := &cli.CommandFlags{}
//	cli.RegisterCommonFlags(cmd, flags)
//	...
//	p, err := cli.NewPrinter(cmd.OutOrStdout(), flags)
//	if err != nil {
//		return err
//	}
//	return p.Print(doc, headers, rows)
package cli
