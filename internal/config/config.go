package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"irverify/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	SuitePath   string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors int
	Seed       uint64

	// Runtime settings
	Runtime        string   // "sim" or "exec"
	RuntimeCommand []string // Command line of an exec runtime
	Arch           string   // Target arch for the simulator

	// Compilation driver settings
	TargetTier            int
	WarmupBatch           int
	MaxAttempts           int
	InitialBackoff        time.Duration
	MaxBackoff            time.Duration
	CompileTimeout        time.Duration
	RepresentativeRetries int

	// Simulator tiering
	SimC1Threshold int
	SimC2Threshold int
	SimLatency     time.Duration
	SimExclude     []string

	// HistoryDSN enables the MySQL run history when set
	HistoryDSN string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors int
	SuitePath  string
	SuiteFile  string
	NameFilter string
	NoBuiltin  bool
	Arch       string
	Seed       uint64
	Recapture  bool
	StrictArch bool
	ShowRules  bool
	OpenFaills bool
}

// New creates a new Config with defaults
func New() *Config {
	sim := defaultSim()
	cfg := &Config{
		ProjectPath:           DefaultProjectPath,
		SuitePath:             DefaultSuitePath,
		OutputJSONFile:        DefaultOutputJSONFile,
		OutputJSONDir:         DefaultOutputJSONDir,
		Processors:            DefaultProcessors,
		Seed:                  uint64(time.Now().UnixNano()),
		Runtime:               DefaultRuntime,
		Arch:                  string(domain.ArchAMD64),
		TargetTier:            DefaultTargetTier,
		WarmupBatch:           DefaultWarmupBatch,
		MaxAttempts:           DefaultMaxAttempts,
		InitialBackoff:        DefaultInitialBackoff,
		MaxBackoff:            DefaultMaxBackoff,
		CompileTimeout:        DefaultCompileTimeout,
		RepresentativeRetries: DefaultRepresentativeRetries,
		SimC1Threshold:        sim.c1,
		SimC2Threshold:        sim.c2,
		SimLatency:            sim.latency,
		Flags:                 Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

type simDefaults struct {
	c1, c2  int
	latency time.Duration
}

func defaultSim() simDefaults {
	return simDefaults{c1: 200, c2: 1000, latency: 2 * time.Millisecond}
}

// Load creates a config, applies the environment and then flags
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)
	return cfg, cfg.Validate()
}

// ApplyFlags stores flags and applies their overrides
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.SuitePath != "" {
		c.SuitePath = flags.SuitePath
	}
	if flags.Arch != "" {
		c.Arch = flags.Arch
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
}

// LoadEnv reads IRV_* variables, after loading an optional .env from the project path
func (c *Config) LoadEnv() error {
	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(c.ProjectPath, ".env"))

	if v := os.Getenv("IRV_PROJECT_PATH"); v != "" {
		c.ProjectPath = v
	}
	if v := os.Getenv("IRV_RUNTIME"); v != "" {
		c.Runtime = v
	}
	if v := os.Getenv("IRV_RUNTIME_CMD"); v != "" {
		c.RuntimeCommand = strings.Fields(v)
	}
	if v := os.Getenv("IRV_ARCH"); v != "" {
		c.Arch = v
	}
	if v := os.Getenv("IRV_HISTORY_DSN"); v != "" {
		c.HistoryDSN = v
	}
	if v := os.Getenv("IRV_SIM_EXCLUDE"); v != "" {
		c.SimExclude = strings.Split(v, ",")
	}

	ints := map[string]*int{
		"IRV_PROCESSORS":       &c.Processors,
		"IRV_TARGET_TIER":      &c.TargetTier,
		"IRV_WARMUP_BATCH":     &c.WarmupBatch,
		"IRV_MAX_ATTEMPTS":     &c.MaxAttempts,
		"IRV_SIM_C1_THRESHOLD": &c.SimC1Threshold,
		"IRV_SIM_C2_THRESHOLD": &c.SimC2Threshold,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"IRV_INITIAL_BACKOFF": &c.InitialBackoff,
		"IRV_MAX_BACKOFF":     &c.MaxBackoff,
		"IRV_COMPILE_TIMEOUT": &c.CompileTimeout,
		"IRV_SIM_LATENCY":     &c.SimLatency,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("IRV_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("IRV_SEED: %w", err)
		}
		c.Seed = seed
	}
	return nil
}

// Validate checks settings that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	switch c.Runtime {
	case "sim":
		if _, err := domain.ParseArch(c.Arch); err != nil {
			return err
		}
	case "exec":
		if len(c.RuntimeCommand) == 0 {
			return fmt.Errorf("runtime exec needs IRV_RUNTIME_CMD")
		}
	default:
		return fmt.Errorf("unknown runtime %q (want sim or exec)", c.Runtime)
	}
	if !domain.Tier(c.TargetTier).Valid() {
		return fmt.Errorf("invalid target tier %d", c.TargetTier)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

// GetSuitePath returns the suite search path, relative to the project unless absolute
func (c *Config) GetSuitePath() string {
	if filepath.IsAbs(c.SuitePath) {
		return c.SuitePath
	}
	return filepath.Join(c.ProjectPath, c.SuitePath)
}

// GetOutputPath returns the full path to the report JSON file.
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
