package storage

import (
	"time"

	"github.com/google/uuid"

	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/verify"
)

// Storage persists and loads run reports (e.g. for the failures viewer).
type Storage interface {
	Save(report *verify.Report, run Run) (*domain.RunOutput, error)
	Load() (*domain.RunOutput, error)
	// SaveOutput writes the full output (e.g. after failures were marked resolved).
	SaveOutput(output *domain.RunOutput) error
}

// Run identifies one harness invocation
type Run struct {
	ID       string
	Arch     domain.Arch
	Duration time.Duration
	Workers  int
	Seed     uint64
	Started  time.Time
}

// NewRun starts a run record with a fresh ID
func NewRun(arch domain.Arch, workers int, seed uint64) Run {
	return Run{
		ID:      uuid.NewString(),
		Arch:    arch,
		Workers: workers,
		Seed:    seed,
		Started: time.Now(),
	}
}

// BuildOutput converts a finished report into its persisted form
func BuildOutput(report *verify.Report, run Run) *domain.RunOutput {
	outcomes := report.Outcomes()
	meta := domain.RunMeta{
		RunID:           run.ID,
		Arch:            run.Arch,
		TotalTestCases:  len(outcomes),
		Duration:        run.Duration.String(),
		DurationSeconds: run.Duration.Seconds(),
		Workers:         run.Workers,
		Seed:            run.Seed,
		Timestamp:       run.Started.Format(time.RFC3339),
	}
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			meta.SkippedCases++
		case o.Passed:
			meta.PassedTestCases++
		default:
			meta.FailedTestCases++
		}
	}
	meta.Failures, _ = report.Counts()

	details := report.Sorted()
	if details == nil {
		details = []domain.Failure{}
	}
	return &domain.RunOutput{Meta: meta, Outcomes: outcomes, Details: details}
}

// JSONStorage stores reports in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

var _ Storage = (*JSONStorage)(nil)
