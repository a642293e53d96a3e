package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_GetSuitePath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default path",
			config:   &Config{ProjectPath: ".", SuitePath: "."},
			expected: ".",
		},
		{
			name:     "relative suite path",
			config:   &Config{ProjectPath: "/project", SuitePath: "suites"},
			expected: "/project/suites",
		},
		{
			name:     "absolute suite path",
			config:   &Config{ProjectPath: "/project", SuitePath: "/absolute/path"},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetSuitePath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_LoadEnv(t *testing.T) {
	dir := t.TempDir()
	env := "IRV_RUNTIME=exec\nIRV_RUNTIME_CMD=irverify serve-sim --arch aarch64\nIRV_MAX_BACKOFF=1s\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("IRV_SEED", "1234")
	t.Setenv("IRV_MAX_ATTEMPTS", "7")

	// godotenv.Load sets process variables; clear them for other tests.
	t.Cleanup(func() {
		for _, key := range []string{"IRV_RUNTIME", "IRV_RUNTIME_CMD", "IRV_MAX_BACKOFF"} {
			os.Unsetenv(key)
		}
	})

	cfg := New()
	cfg.ProjectPath = dir
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Runtime != "exec" {
		t.Errorf("expected runtime exec, got %s", cfg.Runtime)
	}
	if len(cfg.RuntimeCommand) != 4 || cfg.RuntimeCommand[1] != "serve-sim" {
		t.Errorf("unexpected runtime command %v", cfg.RuntimeCommand)
	}
	if cfg.MaxBackoff != time.Second {
		t.Errorf("expected max backoff 1s, got %s", cfg.MaxBackoff)
	}
	if cfg.Seed != 1234 {
		t.Errorf("expected seed 1234, got %d", cfg.Seed)
	}
	if cfg.MaxAttempts != 7 {
		t.Errorf("expected max attempts 7, got %d", cfg.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestConfig_LoadEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("IRV_WARMUP_BATCH", "many")
	cfg := New()
	cfg.ProjectPath = t.TempDir()
	if err := cfg.LoadEnv(); err == nil {
		t.Error("expected error for non-numeric IRV_WARMUP_BATCH")
	}
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Processors: 8, SuitePath: "suites", Arch: "arm64", Seed: 99, Recapture: true})

	if cfg.Processors != 8 {
		t.Errorf("expected 8 processors, got %d", cfg.Processors)
	}
	if cfg.SuitePath != "suites" {
		t.Errorf("expected suite path suites, got %s", cfg.SuitePath)
	}
	if cfg.Arch != "arm64" || cfg.Seed != 99 {
		t.Errorf("unexpected arch %s / seed %d", cfg.Arch, cfg.Seed)
	}
	if !cfg.Flags.Recapture {
		t.Error("expected flags to be stored")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("arm64 is an aarch64 alias: %v", err)
	}

	t.Run("zero values keep defaults", func(t *testing.T) {
		cfg := New()
		seed := cfg.Seed
		cfg.ApplyFlags(Flags{})
		if cfg.Processors != DefaultProcessors || cfg.Seed != seed || cfg.SuitePath != DefaultSuitePath {
			t.Error("expected defaults to survive empty flags")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown runtime", mutate: func(c *Config) { c.Runtime = "jvm" }},
		{name: "exec without command", mutate: func(c *Config) { c.Runtime = "exec" }},
		{name: "bad arch", mutate: func(c *Config) { c.Arch = "mips" }},
		{name: "bad tier", mutate: func(c *Config) { c.TargetTier = 9 }},
		{name: "no attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("IRV_PROCESSORS", "6")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Processors != 6 {
		t.Errorf("expected IRV_PROCESSORS to apply without a flag, got %d", cfg.Processors)
	}

	cfg, err = Load(Flags{Processors: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Processors != 2 {
		t.Errorf("expected the flag to win, got %d", cfg.Processors)
	}

	t.Setenv("IRV_RUNTIME", "exec")
	if _, err := Load(Flags{}); err == nil {
		t.Error("expected validation error for exec runtime without a command")
	}
}
