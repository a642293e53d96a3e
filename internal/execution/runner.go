package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"irverify/internal/arggen"
	"irverify/internal/capture"
	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/driver"
	"irverify/internal/matcher"
	"irverify/internal/runtime"
	"irverify/internal/verify"
)

// CaseResult is what running one test case produced
type CaseResult struct {
	Outcome  domain.Outcome
	Failures []domain.Failure
}

// Runner executes a single test case against the runtime
type Runner struct {
	config    *config.Config
	rt        runtime.Runtime
	driver    *driver.Driver
	capturer  *capture.Capturer
	matcher   *matcher.Matcher
	tier      domain.Tier
	seed      uint64
	recapture bool
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, rt runtime.Runtime, m *matcher.Matcher) *Runner {
	tier := domain.Tier(cfg.TargetTier)
	return &Runner{
		config: cfg,
		rt:     rt,
		driver: driver.New(rt, driver.Options{
			TargetTier:            tier,
			WarmupBatch:           cfg.WarmupBatch,
			MaxAttempts:           cfg.MaxAttempts,
			InitialBackoff:        cfg.InitialBackoff,
			MaxBackoff:            cfg.MaxBackoff,
			Timeout:               cfg.CompileTimeout,
			RepresentativeRetries: cfg.RepresentativeRetries,
		}),
		capturer:  capture.New(rt),
		matcher:   m,
		tier:      tier,
		seed:      cfg.Seed,
		recapture: cfg.Flags.Recapture,
	}
}

// NewRuntime starts the runtime selected by the configuration
func NewRuntime(ctx context.Context, cfg *config.Config) (runtime.Runtime, error) {
	switch cfg.Runtime {
	case "exec":
		client, err := runtime.Start(ctx, cfg.RuntimeCommand, nil)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "sim":
		arch, err := domain.ParseArch(cfg.Arch)
		if err != nil {
			return nil, err
		}
		return runtime.NewSim(runtime.SimConfig{
			Arch:           arch,
			C1Threshold:    cfg.SimC1Threshold,
			C2Threshold:    cfg.SimC2Threshold,
			CompileLatency: cfg.SimLatency,
			Exclude:        cfg.SimExclude,
		}), nil
	}
	return nil, fmt.Errorf("unknown runtime %q", cfg.Runtime)
}

// Prepare validates every case against the matcher vocabulary and registers method
// bodies with runtimes that accept them. It runs once, before any case executes.
func (r *Runner) Prepare(cases []domain.TestCase) error {
	registrar, canRegister := r.rt.(runtime.Registrar)
	for _, tc := range cases {
		if err := tc.Validate(); err != nil {
			return err
		}
		if err := r.matcher.Validate(tc); err != nil {
			return err
		}
		if tc.Body != nil && canRegister {
			if err := registrar.Register(tc.Method, *tc.Body); err != nil {
				return fmt.Errorf("register %s: %w", tc.ID(), err)
			}
		}
	}
	return nil
}

// Run drives one case through compilation, capture, matching and checking.
// Failures of the case land in the result; the returned error is fatal to the run.
func (r *Runner) Run(ctx context.Context, tc domain.TestCase) (res CaseResult, err error) {
	start := time.Now()
	res = CaseResult{Outcome: domain.Outcome{TestCase: tc.ID(), Method: tc.Method, Phase: tc.Phase}}
	defer func() { res.Outcome.Duration = time.Since(start) }()

	arch := r.rt.Arch()
	if !tc.Supports(arch) {
		res.Outcome.Skipped = true
		res.Failures = append(res.Failures, verify.ArchMismatch(tc, arch, fmt.Errorf("requires %v", tc.Requires)))
		return res, nil
	}
	if err := r.matcher.CheckArch(tc.Kinds(), arch); err != nil {
		res.Outcome.Skipped = true
		res.Failures = append(res.Failures, verify.ArchMismatch(tc, arch, err))
		return res, nil
	}

	comp, err := r.driver.Compile(ctx, tc, arggen.New(r.seed, tc))
	if comp != nil {
		res.Outcome.Invocations = comp.Invocations
		res.Outcome.Traps = comp.Traps
		res.Outcome.Attempts = comp.Attempts
		res.Outcome.Tier = comp.Tier
	}
	if errors.Is(err, driver.ErrCompilationTimeout) {
		res.Failures = append(res.Failures, verify.Timeout(tc, err))
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", tc.ID(), err)
	}

	counts, empty, err := r.observe(tc)
	if err != nil {
		return res, err
	}
	comp.MarkCaptured()
	res.Outcome.EmptyDump = empty
	res.Outcome.Counts = make(map[string]int, len(counts))
	for k, v := range counts {
		res.Outcome.Counts[k.String()] = v
	}
	res.Failures = append(res.Failures, verify.Check(tc, counts)...)

	if r.recapture {
		again, _, err := r.observe(tc)
		if err != nil {
			return res, err
		}
		res.Failures = append(res.Failures, verify.Nondeterministic(tc, counts, again)...)
	}

	res.Outcome.Passed = len(res.Failures) == 0
	return res, nil
}

// observe captures the case's phase dump and counts its nodes
func (r *Runner) observe(tc domain.TestCase) (domain.MatchResult, bool, error) {
	art, err := r.capturer.Capture(tc.Method, tc.Phase, r.tier)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", tc.ID(), err)
	}
	counts, err := r.matcher.Match(art, tc.Kinds())
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", tc.ID(), err)
	}
	return counts, art.Empty, nil
}
