package commands

import (
	"github.com/spf13/cobra"

	"irverify/internal/matcher"
	"irverify/internal/ui"
)

// NodesCommand handles the nodes command
type NodesCommand struct {
	matcher   *matcher.Matcher
	formatter *ui.Formatter
}

// NewNodesCommand creates a new NodesCommand
func NewNodesCommand(m *matcher.Matcher, formatter *ui.Formatter) *NodesCommand {
	return &NodesCommand{matcher: m, formatter: formatter}
}

// Execute runs the command
func (nc *NodesCommand) Execute(cmd *cobra.Command, args []string) error {
	nc.formatter.PrintVocabulary(nc.matcher)
	return nil
}
