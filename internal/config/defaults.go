package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSuitePath is where suite files are searched for
	DefaultSuitePath = "."
	// DefaultOutputJSONFile is the default report file name
	DefaultOutputJSONFile = "ir-report.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultProcessors is the default number of workers
	DefaultProcessors = 4
	// DefaultRuntime selects the in-process simulator
	DefaultRuntime = "sim"
	// DefaultTargetTier is the C2 tier
	DefaultTargetTier = 4
	// DefaultWarmupBatch is the number of calls between tier polls
	DefaultWarmupBatch = 500
	// DefaultMaxAttempts bounds the number of tier polls per method
	DefaultMaxAttempts = 40
	// DefaultInitialBackoff is the first wait between tier polls
	DefaultInitialBackoff = 2 * time.Millisecond
	// DefaultMaxBackoff caps the doubling wait between tier polls
	DefaultMaxBackoff = 250 * time.Millisecond
	// DefaultCompileTimeout is the wall-clock budget for one method
	DefaultCompileTimeout = 30 * time.Second
	// DefaultRepresentativeRetries bounds redraws of a trapping representative call
	DefaultRepresentativeRetries = 8
	// DefaultSuitePattern matches suite files found by the scanner
	DefaultSuitePattern = ".irsuite.yaml"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for suites
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
