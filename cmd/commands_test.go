package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"stagehand/internal/api"
	"stagehand/internal/cli"
	"stagehand/internal/scope"
)

const testEnvironment = `name: ci
defaultScope: CLASS
driverTimeout: 30s
devices:
  - name: chrome
    type: WEB
    browser: CHROME
    os: WINDOWS
    resolution:
      width: 1920
      height: 1080
  - name: firefox
    type: WEB
    browser: FIREFOX
    os: LINUX
    scope: SUITE
  - name: pixel
    type: MOBILE
    mobileOS: ANDROID
    osVersion: "14"
    scope: EXECUTION
`

const testCandidates = `capability: LoginPage
candidates:
  - name: ChromeLogin
    criteria:
      browser: CHROME
  - name: FirefoxLogin
    criteria:
      browser: FIREFOX
  - name: MobileLogin
    criteria:
      deviceType: MOBILE
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cli.DisableColor()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestDevices_Table(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	out, err := execute(t, newDevicesCmd(), "--env", env)
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "CHROME/WINDOWS")
	assert.Contains(t, out, "1920x1080")
	assert.Contains(t, out, "FIREFOX/LINUX")
	assert.Contains(t, out, "EXECUTION")
	assert.Contains(t, out, "Environment ci: default scope CLASS, driver timeout 30s")
}

func TestDevices_YAMLShowsEffectiveScope(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	out, err := execute(t, newDevicesCmd(), "--env", env, "-o", "yaml")
	require.NoError(t, err)

	var doc environmentDocument
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "ci", doc.Name)
	assert.Equal(t, "30s", doc.DriverTimeout)
	require.Len(t, doc.Devices, 3)
	assert.Equal(t, scope.Class, doc.Devices[0].Scope, "default scope filled in")
	assert.Equal(t, scope.Suite, doc.Devices[1].Scope)
	assert.Equal(t, scope.Execution, doc.Devices[2].Scope)
	assert.Equal(t, "14", doc.Devices[2].OSVersion)
}

func TestDevices_MissingEnvironment(t *testing.T) {
	_, err := execute(t, newDevicesCmd(), "--env", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, api.IsNoConfiguration(err))
	assert.Equal(t, ExitCodeNoConfiguration, getExitCode(err))
}

func TestDevices_InvalidEnvironment(t *testing.T) {
	env := writeFile(t, "env.yaml", "name: ci\ndevices:\n  - name: x\n    type: TOASTER\n")

	_, err := execute(t, newDevicesCmd(), "--env", env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOASTER")
}

func TestDevices_InvalidOutputFormat(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	_, err := execute(t, newDevicesCmd(), "--env", env, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestMatch_AllDevices(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)
	candidates := writeFile(t, "login.yaml", testCandidates)

	out, err := execute(t, newMatchCmd(), "--env", env, "--candidates", candidates, "-o", "json")
	require.NoError(t, err)

	var docs []matchDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 3)

	winners := map[string]string{}
	for _, d := range docs {
		assert.Equal(t, "LoginPage", d.Capability)
		winners[d.Device] = d.Winner
	}
	assert.Equal(t, map[string]string{
		"chrome":  "ChromeLogin",
		"firefox": "FirefoxLogin",
		"pixel":   "MobileLogin",
	}, winners)
}

func TestMatch_SingleDeviceRanking(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)
	candidates := writeFile(t, "login.yaml", testCandidates)

	out, err := execute(t, newMatchCmd(), "--env", env, "--candidates", candidates, "--device", "chrome", "-o", "json")
	require.NoError(t, err)

	var doc matchDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "ChromeLogin", doc.Winner)
	require.Len(t, doc.Rankings, 3)

	assert.Equal(t, "ChromeLogin", doc.Rankings[0].Candidate)
	assert.Equal(t, 1, doc.Rankings[0].Score)
	assert.Equal(t, resultSelected, doc.Rankings[0].Result)
	require.Len(t, doc.Rankings[0].Contributions, 1)
	assert.Equal(t, "browser", doc.Rankings[0].Contributions[0].Attribute)

	assert.Equal(t, "FirefoxLogin", doc.Rankings[1].Candidate)
	assert.Equal(t, resultRejected, doc.Rankings[1].Result)
	assert.Equal(t, "MobileLogin", doc.Rankings[2].Candidate)
	assert.Equal(t, resultRejected, doc.Rankings[2].Result)
}

func TestMatch_TableShowsContributions(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)
	candidates := writeFile(t, "login.yaml", testCandidates)

	out, err := execute(t, newMatchCmd(), "--env", env, "--candidates", candidates, "--device", "pixel")
	require.NoError(t, err)

	assert.Contains(t, out, "MobileLogin")
	assert.Contains(t, out, "deviceType +1")
	assert.Contains(t, out, resultSelected)
	assert.Contains(t, out, resultOutscored)
}

func TestMatch_NoWinner(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)
	candidates := writeFile(t, "login.yaml", `capability: LoginPage
candidates:
  - name: FirefoxLogin
    criteria:
      browser: FIREFOX
`)

	out, err := execute(t, newMatchCmd(), "--env", env, "--candidates", candidates, "--device", "chrome")
	require.Error(t, err)
	assert.True(t, api.IsNoMatchingVariant(err))
	assert.Contains(t, out, resultRejected)

	out, err = execute(t, newMatchCmd(), "--env", env, "--candidates", candidates)
	require.NoError(t, err, "summary mode reports, it does not fail")
	assert.Contains(t, out, "no match")
	// pixel is not a WEB device, so the browser criterion is indifferent there.
	assert.Contains(t, out, "1 device(s) have no matching LoginPage")
}

func TestMatch_UnknownDevice(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)
	candidates := writeFile(t, "login.yaml", testCandidates)

	_, err := execute(t, newMatchCmd(), "--env", env, "--candidates", candidates, "--device", "safari")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestMatch_RequiresCandidates(t *testing.T) {
	_, err := execute(t, newMatchCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidates")
}

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: testCandidates},
		{name: "unknown field", input: "capability: X\ncandidates:\n  - name: A\n    colour: red\n", wantErr: "malformed candidate file"},
		{name: "unknown criteria field", input: "capability: X\ncandidates:\n  - name: A\n    criteria:\n      engine: v8\n", wantErr: "malformed candidate file"},
		{name: "missing capability", input: "candidates:\n  - name: A\n", wantErr: "capability is required"},
		{name: "no candidates", input: "capability: X\n", wantErr: "at least one candidate"},
		{name: "empty", input: "", wantErr: "capability is required"},
		{name: "unnamed candidate", input: "capability: X\ncandidates:\n  - criteria:\n      os: LINUX\n", wantErr: "candidates[0].name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parseCandidates([]byte(tt.input), "test.yaml")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, file.candidates(), 3)
		})
	}
}

func TestSimulate_AllDriversReleased(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	out, err := execute(t, newSimulateCmd(), "--env", env, "--workers", "2", "--classes", "3", "--tests", "2", "-o", "json")
	require.NoError(t, err)

	var report simulationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "ci", report.Environment)
	assert.Equal(t, 6, report.Tests)
	assert.Equal(t, 6, report.Passed)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.DriversOpen)
	// chrome is CLASS scoped and used by two classes; firefox and pixel are shared.
	assert.Equal(t, 4, report.DriversCreated)
	assert.Equal(t, 6, report.Events["TestStarted"])
	assert.Equal(t, 1, report.Events["RunCleared"])
	assert.Equal(t, 1, report.Events["SuiteCleared"])
}

func TestSimulate_FailingDevice(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	out, err := execute(t, newSimulateCmd(), "--env", env, "--workers", "2", "--classes", "3", "--tests", "2",
		"--fail-device", "pixel", "-o", "json")
	require.NoError(t, err)

	var report simulationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Passed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 3, report.DriversCreated)
	assert.Equal(t, 2, report.Events["DriverUnavailable"])
	assert.Zero(t, report.DriversOpen)
}

func TestSimulate_TableSummary(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	out, err := execute(t, newSimulateCmd(), "--env", env, "--suites", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "EVENT")
	assert.Contains(t, out, "DriverCreated")
	assert.Contains(t, out, "all released")
}

func TestSimulate_Validation(t *testing.T) {
	env := writeFile(t, "env.yaml", testEnvironment)

	_, err := execute(t, newSimulateCmd(), "--env", env, "--workers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--workers must be at least 1")

	_, err = execute(t, newSimulateCmd(), "--env", env, "--delay", "-1s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--delay must not be negative")
}

func TestSimulate_MissingEnvironment(t *testing.T) {
	_, err := execute(t, newSimulateCmd(), "--env", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCodeNoConfiguration, getExitCode(err))
}
