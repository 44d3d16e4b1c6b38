package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"

	pkgstrings "stagehand/pkg/strings"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable formats output as a rounded table
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON formats output as indented JSON
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML converted from the JSON form
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported output format.
// Returns nil if valid, or an error with a helpful message listing valid formats.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

// Printer writes command results in the selected format.
type Printer struct {
	out       io.Writer
	format    OutputFormat
	noHeaders bool
}

// NewPrinter validates flags and returns a printer writing to out.
func NewPrinter(out io.Writer, flags *CommandFlags) (*Printer, error) {
	if err := ValidateOutputFormat(flags.OutputFormat); err != nil {
		return nil, err
	}
	return &Printer{
		out:       out,
		format:    OutputFormat(flags.OutputFormat),
		noHeaders: flags.NoHeaders,
	}, nil
}

// Format returns the selected output format.
func (p *Printer) Format() OutputFormat {
	return p.format
}

// Writer returns the destination writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Print renders headers and rows as a table, or doc as JSON or YAML.
func (p *Printer) Print(doc any, headers []string, rows [][]string) error {
	switch p.format {
	case OutputFormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case OutputFormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = p.out.Write(data)
		return err
	default:
		p.Table(headers, rows)
		return nil
	}
}

// Table renders rows in the standard table style regardless of the
// selected format. Cells are flattened to one line and cut at
// DefaultCellMaxLen.
func (p *Printer) Table(headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Header = text.Colors{text.FgHiCyan}

	if !p.noHeaders && len(headers) > 0 {
		header := make(table.Row, len(headers))
		for i, h := range headers {
			header[i] = h
		}
		t.AppendHeader(header)
	}
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = pkgstrings.SingleLine(cell, pkgstrings.DefaultCellMaxLen)
		}
		t.AppendRow(row)
	}
	t.Render()
}

var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.Faint)
)

// DisableColor turns off color for both fatih/color and go-pretty output.
func DisableColor() {
	color.NoColor = true
	text.DisableColors()
}

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return successColor.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return warningColor.Sprintf("⚠ %s", msg)
}

// Muted renders secondary text such as hints and footers.
func Muted(msg string) string {
	return mutedColor.Sprint(msg)
}
