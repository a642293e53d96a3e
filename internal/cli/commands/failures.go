package commands

import (
	"irverify/internal/storage"
	"irverify/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(st storage.Storage, formatter *ui.Formatter, viewer ui.Viewer) *FailuresCommand {
	return &FailuresCommand{
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute shows the last report, in the viewer unless print is set
func (fc *FailuresCommand) Execute(print bool) error {
	if print {
		return fc.formatter.PrintMetaStats(fc.storage)
	}

	results, err := fc.storage.Load()
	if err != nil {
		return err
	}
	return fc.viewer.View(results)
}
