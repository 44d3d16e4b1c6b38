package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stagehand/internal/cli"
	"stagehand/internal/config"
	"stagehand/internal/device"
	"stagehand/internal/driver/drivertest"
	"stagehand/internal/events"
	"stagehand/internal/lifecycle"
)

type simulateOptions struct {
	workers     int
	suites      int
	classes     int
	tests       int
	delay       time.Duration
	failDevices []string
}

// simulationReport is the json/yaml form of a rehearsal.
type simulationReport struct {
	Environment    string         `json:"environment"`
	Workers        int            `json:"workers"`
	Suites         int            `json:"suites"`
	Classes        int            `json:"classes"`
	Tests          int            `json:"tests"`
	Passed         int            `json:"passed"`
	Failed         int            `json:"failed"`
	DriversCreated int            `json:"driversCreated"`
	DriversOpen    int            `json:"driversOpen"`
	Events         map[string]int `json:"events"`
}

func newSimulateCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Rehearse a parallel run against fake drivers",
		Long: `Drive the test lifecycle for an environment with fake drivers and report
how many sessions were created, reused and released.

Each suite runs its classes across the workers in parallel; every test
requests one device, rotating through the environment. The command fails
when any driver is still open after the run finishes.

Examples:
  stagehand simulate --workers 4 --suites 2 --classes 8 --tests 5
  stagehand simulate --fail-device pixel --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, flags, opts)
		},
	}
	cli.RegisterCommonFlags(cmd, flags)
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "Number of parallel workers")
	cmd.Flags().IntVar(&opts.suites, "suites", 1, "Number of suites, run one after another")
	cmd.Flags().IntVar(&opts.classes, "classes", 4, "Number of classes per suite")
	cmd.Flags().IntVar(&opts.tests, "tests", 3, "Number of tests per class")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "Simulated driver start-up time")
	cmd.Flags().StringSliceVar(&opts.failDevices, "fail-device", nil, "Devices whose drivers fail to start")
	return cmd
}

func (o *simulateOptions) validate() error {
	counts := []struct {
		flag  string
		value int
	}{
		{"workers", o.workers},
		{"suites", o.suites},
		{"classes", o.classes},
		{"tests", o.tests},
	}
	for _, c := range counts {
		if c.value < 1 {
			return fmt.Errorf("--%s must be at least 1, got %d", c.flag, c.value)
		}
	}
	if o.delay < 0 {
		return fmt.Errorf("--delay must not be negative")
	}
	return nil
}

func runSimulate(cmd *cobra.Command, flags *cli.CommandFlags, opts *simulateOptions) error {
	p, err := cli.NewPrinter(cmd.OutOrStdout(), flags)
	if err != nil {
		return err
	}
	if err := opts.validate(); err != nil {
		return err
	}

	factory := drivertest.NewFactory().WithDelay(opts.delay)
	for _, name := range opts.failDevices {
		factory.FailFor(name, errors.New("simulated start-up failure"))
	}

	rec := events.NewMemoryRecorder()
	exec, err := lifecycle.NewExecution(config.NewFileProvider(flags.EnvFile), factory, nil,
		lifecycle.WithRecorder(events.Multi(rec, events.NewLogRecorder())))
	if err != nil {
		return err
	}

	sim := &simulation{mgr: lifecycle.NewManager(exec), opts: opts, devices: exec.Environment().Devices()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runErr := sim.run(ctx)

	report := simulationReport{
		Environment:    exec.Environment().Name(),
		Workers:        opts.workers,
		Suites:         opts.suites,
		Classes:        opts.classes,
		Tests:          opts.suites * opts.classes * opts.tests,
		DriversCreated: len(factory.Created()),
		DriversOpen:    factory.Open(),
		Events:         make(map[string]int),
	}
	for _, ev := range rec.Filter(events.ReasonTestFinished) {
		if ev.Data.Result == string(lifecycle.ResultPassed) {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	for reason, n := range rec.Counts() {
		report.Events[string(reason)] = n
	}

	if err := p.Print(report, []string{"event", "count"}, eventRows(report.Events)); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if report.DriversOpen > 0 {
		return fmt.Errorf("%d of %d driver(s) still open after the run finished", report.DriversOpen, report.DriversCreated)
	}
	if p.Format() == cli.OutputFormatTable {
		fmt.Fprintln(p.Writer(), cli.FormatSuccess(fmt.Sprintf(
			"%d test(s) on %d worker(s): %d passed, %d failed; %d driver(s) created, all released",
			report.Tests, report.Workers, report.Passed, report.Failed, report.DriversCreated)))
	}
	return nil
}

func eventRows(counts map[string]int) [][]string {
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	rows := make([][]string, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []string{r, strconv.Itoa(counts[r])})
	}
	return rows
}

// simulation replays runner signals the way a parallel test runner would.
type simulation struct {
	mgr     *lifecycle.Manager
	opts    *simulateOptions
	devices []*device.Device
}

func (s *simulation) run(ctx context.Context) error {
	defer s.mgr.OnRunFinish()

	for i := 1; i <= s.opts.suites; i++ {
		suite := fmt.Sprintf("suite-%d", i)

		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < s.opts.workers; w++ {
			w := w
			g.Go(func() error {
				return s.worker(gctx, w, suite)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := s.mgr.Dispatch(ctx, lifecycle.SuiteFinish{Suite: suite}); err != nil {
			return err
		}
	}
	return nil
}

// worker runs every class whose index maps to it, one test at a time.
func (s *simulation) worker(ctx context.Context, index int, suite string) error {
	worker := fmt.Sprintf("worker-%d", index+1)

	for c := index; c < s.opts.classes; c += s.opts.workers {
		class := fmt.Sprintf("%s.class-%d", suite, c+1)
		for t := 0; t < s.opts.tests; t++ {
			if err := s.test(ctx, worker, suite, class, t, c+t); err != nil {
				return err
			}
		}
		if err := s.mgr.Dispatch(ctx, lifecycle.ClassFinish{Worker: worker}); err != nil {
			return err
		}
	}
	return nil
}

// test runs one test on the device at position slot, wrapping around.
func (s *simulation) test(ctx context.Context, worker, suite, class string, n, slot int) error {
	start := lifecycle.TestStart{
		Worker: worker,
		Test:   fmt.Sprintf("%s.test-%d", class, n+1),
		Class:  class,
		Suite:  suite,
	}
	if err := s.mgr.Dispatch(ctx, start); err != nil {
		return err
	}

	result := lifecycle.ResultPassed
	if tc, ok := s.mgr.Context(worker); ok && len(s.devices) > 0 {
		d := s.devices[slot%len(s.devices)]
		if _, err := tc.DriverFor(ctx, d); err != nil {
			result = lifecycle.ResultFailed
		}
	}

	return s.mgr.Dispatch(ctx, lifecycle.TestFinish{Worker: worker, Result: result})
}
