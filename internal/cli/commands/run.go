package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/execution"
	"irverify/internal/matcher"
	"irverify/internal/storage"
	"irverify/internal/ui"
	"irverify/internal/verify"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	loader    *CaseLoader
	scheduler execution.Scheduler
	matcher   *matcher.Matcher
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	loader *CaseLoader,
	scheduler execution.Scheduler,
	m *matcher.Matcher,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		loader:    loader,
		scheduler: scheduler,
		matcher:   m,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command. It returns verify.ErrFailures when the report holds failures;
// any other error means the run could not complete.
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Discover cases
	cases, err := rc.loader.Load()
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		color.Yellow("No test cases to execute")
		return nil
	}

	rt, err := execution.NewRuntime(ctx, rc.config)
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}
	defer rt.Close()

	run := storage.NewRun(rt.Arch(), rc.config.Processors, rc.config.Seed)
	report := verify.NewReport(rc.config.Flags.StrictArch)
	runner := execution.NewRunner(rc.config, rt, rc.matcher)
	pool := execution.NewWorkerPool(rc.config, runner, rc.scheduler, report)

	// Create and set progress bar
	pool.SetProgress(ui.NewProgressBar(len(cases)))

	// Execute cases
	duration, err := pool.Execute(ctx, cases)
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}
	run.Duration = duration

	// Save report
	output, err := rc.storage.Save(report, run)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if rc.config.HistoryDSN != "" {
		rc.compareHistory(cmd, run, output.Outcomes)
	}

	// Print stats
	if err := rc.formatter.PrintMetaStats(rc.storage); err != nil {
		return err
	}

	if !report.Failed() {
		return nil
	}
	if rc.config.Flags.OpenFaills {
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}
	return verify.ErrFailures
}

// compareHistory records this run's counts and warns about drift since the previous run.
// The history store is optional, so its errors are reported as warnings.
func (rc *RunCommand) compareHistory(cmd *cobra.Command, run storage.Run, outcomes []domain.Outcome) {
	history, err := storage.OpenHistory(cmd.Context(), rc.config.HistoryDSN)
	if err != nil {
		rc.formatter.Warn("run history disabled: %v", err)
		return
	}
	defer history.Close()

	drifts, err := history.Drifts(cmd.Context(), run.ID, run.Arch, outcomes)
	if err != nil {
		rc.formatter.Warn("run history: %v", err)
		return
	}
	rc.formatter.PrintDrifts(drifts)
}
