package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stagehand/internal/api"
	"stagehand/internal/cli"
	"stagehand/internal/device"
	"stagehand/internal/variant"
	pkgstrings "stagehand/pkg/strings"
)

// candidateFile is the yaml shape accepted by --candidates.
//
//	capability: LoginPage
//	candidates:
//	  - name: ChromeLogin
//	    criteria:
//	      browser: CHROME
//	  - name: DefaultLogin
type candidateFile struct {
	Capability string          `yaml:"capability"`
	Candidates []candidateSpec `yaml:"candidates"`
}

type candidateSpec struct {
	Name     string           `yaml:"name"`
	Criteria variant.Criteria `yaml:"criteria,omitempty"`
}

type rankingDocument struct {
	Candidate     string                 `json:"candidate"`
	Score         int                    `json:"score"`
	Result        string                 `json:"result"`
	Contributions []variant.Contribution `json:"contributions,omitempty"`
}

type matchDocument struct {
	Capability string            `json:"capability"`
	Device     string            `json:"device"`
	Winner     string            `json:"winner,omitempty"`
	Rankings   []rankingDocument `json:"rankings"`
}

// maxDetails caps the contributions listed per table row.
const maxDetails = 6

const (
	resultSelected  = "selected"
	resultOutscored = "outscored"
	resultRejected  = "rejected"
	resultExcluded  = "excluded"
)

func newMatchCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	var candidatesPath, deviceName string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Explain which variant candidate wins on each device",
		Long: `Score the candidates listed in a yaml file against the devices of an
environment and show which one a test would receive.

With --device the full ranking for that device is shown, including each
attribute's contribution. Without it, every device is listed with its winner.

Candidate file format:
  capability: LoginPage
  candidates:
    - name: ChromeLogin
      criteria:
        browser: CHROME
    - name: DefaultLogin

Examples:
  stagehand match --candidates login.yaml
  stagehand match --candidates login.yaml --device chrome -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, flags, candidatesPath, deviceName)
		},
	}
	cli.RegisterCommonFlags(cmd, flags)
	cmd.Flags().StringVarP(&candidatesPath, "candidates", "c", "", "Candidate definition file (required)")
	cmd.Flags().StringVarP(&deviceName, "device", "d", "", "Show the full ranking for this device only")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func runMatch(cmd *cobra.Command, flags *cli.CommandFlags, candidatesPath, deviceName string) error {
	p, err := cli.NewPrinter(cmd.OutOrStdout(), flags)
	if err != nil {
		return err
	}
	file, err := loadCandidates(candidatesPath)
	if err != nil {
		return err
	}
	env, err := loadEnvironment(flags)
	if err != nil {
		return err
	}

	candidates := file.candidates()
	if deviceName != "" {
		d, ok := env.Device(deviceName)
		if !ok {
			return api.NewNotFoundError("device", deviceName)
		}
		doc := explain(file.Capability, candidates, d)
		if err := p.Print(doc, []string{"rank", "candidate", "score", "result", "details"}, rankingRows(doc)); err != nil {
			return err
		}
		if doc.Winner == "" {
			return api.NewNoMatchingVariantError(file.Capability, d.Name, len(candidates))
		}
		return nil
	}

	docs := make([]matchDocument, 0, len(env.Devices()))
	rows := make([][]string, 0, len(env.Devices()))
	unmatched := 0
	for _, d := range env.Devices() {
		doc := explain(file.Capability, candidates, d)
		docs = append(docs, doc)

		winner, score := cli.FormatWarning("no match"), ""
		if doc.Winner == "" {
			unmatched++
		} else {
			winner = doc.Winner
			score = strconv.Itoa(doc.Rankings[0].Score)
		}
		rows = append(rows, []string{d.Name, string(d.Type), winner, score})
	}

	if err := p.Print(docs, []string{"device", "type", "winner", "score"}, rows); err != nil {
		return err
	}
	if unmatched > 0 && p.Format() == cli.OutputFormatTable {
		fmt.Fprintln(p.Writer(), cli.Muted(fmt.Sprintf("%d device(s) have no matching %s; use --device for details",
			unmatched, file.Capability)))
	}
	return nil
}

func loadCandidates(path string) (*candidateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading candidate file %s: %w", path, err)
	}
	return parseCandidates(data, path)
}

func parseCandidates(data []byte, source string) (*candidateFile, error) {
	var file candidateFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("malformed candidate file %s: %w", source, err)
	}
	if strings.TrimSpace(file.Capability) == "" {
		return nil, fmt.Errorf("candidate file %s: capability is required", source)
	}
	if len(file.Candidates) == 0 {
		return nil, fmt.Errorf("candidate file %s: at least one candidate is required", source)
	}
	for i, c := range file.Candidates {
		if c.Name == "" {
			return nil, fmt.Errorf("candidate file %s: candidates[%d].name is required", source, i)
		}
	}
	return &file, nil
}

// candidates turns the file entries into variant candidates. The CLI never
// instantiates them, so each carries a placeholder constructor.
func (f *candidateFile) candidates() []variant.Candidate {
	out := make([]variant.Candidate, len(f.Candidates))
	for i, c := range f.Candidates {
		name := c.Name
		out[i] = variant.Candidate{
			Name:     name,
			Criteria: c.Criteria,
			New:      func() any { return name },
		}
	}
	return out
}

func explain(capability string, candidates []variant.Candidate, d *device.Device) matchDocument {
	doc := matchDocument{Capability: capability, Device: d.Name}
	for _, r := range variant.Rank(variant.TypeOf[any](), candidates, d) {
		result := resultOutscored
		switch {
		case r.Selected:
			result = resultSelected
			doc.Winner = r.Name()
		case r.Rejected:
			result = resultRejected
		case r.Excluded:
			result = resultExcluded
		}
		doc.Rankings = append(doc.Rankings, rankingDocument{
			Candidate:     r.Name(),
			Score:         r.Score,
			Result:        result,
			Contributions: r.Contributions,
		})
	}
	return doc
}

func rankingRows(doc matchDocument) [][]string {
	rows := make([][]string, 0, len(doc.Rankings))
	for i, r := range doc.Rankings {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Candidate,
			strconv.Itoa(r.Score),
			colorResult(r.Result),
			contributions(r.Contributions),
		})
	}
	return rows
}

func colorResult(result string) string {
	switch result {
	case resultSelected:
		return color.GreenString(result)
	case resultRejected:
		return color.RedString(result)
	default:
		return color.YellowString(result)
	}
}

func contributions(parts []variant.Contribution) string {
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		out = append(out, fmt.Sprintf("%s %+d", c.Attribute, c.Points))
	}
	return pkgstrings.JoinLimited(out, ", ", maxDetails)
}
