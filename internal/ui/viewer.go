package ui

import "irverify/internal/domain"

// Viewer displays a run report in an interactive TUI
type Viewer interface {
	View(results *domain.RunOutput) error
}

var _ Viewer = (*ErrorViewer)(nil)
