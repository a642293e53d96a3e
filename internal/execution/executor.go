package execution

import (
	"context"
	"time"

	"irverify/internal/domain"
)

// Executor executes test cases and records their results
type Executor interface {
	Execute(ctx context.Context, cases []domain.TestCase) (time.Duration, error)
}

var _ Executor = (*WorkerPool)(nil)
