package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/storage"
	"irverify/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	loader    *CaseLoader
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	loader *CaseLoader,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		loader:    loader,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cases, err := lc.loader.Load()
	if err != nil {
		return err
	}

	if len(cases) == 0 {
		color.Yellow("No test cases found")
		return nil
	}

	lc.formatter.PrintCaseList(cases, lc.config.Flags.ShowRules, lc.failedCases())
	return nil
}

// failedCases returns the IDs of cases that failed in the last run, if a report exists
func (lc *ListCommand) failedCases() map[string]struct{} {
	output, err := lc.storage.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{})
	for _, fl := range output.Details {
		if fl.Kind != domain.FailArchitectureMismatch && !fl.Resolved {
			failed[fl.TestCase] = struct{}{}
		}
	}
	return failed
}
