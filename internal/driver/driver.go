// Package driver warms methods up until the runtime promotes them to a target tier.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"irverify/internal/domain"
	"irverify/internal/runtime"
)

// ErrCompilationTimeout is matched by errors.Is for every TimeoutError
var ErrCompilationTimeout = errors.New("compilation timeout")

// TimeoutError reports a method that never reached its target tier within the retry budget
type TimeoutError struct {
	Method   string
	Target   domain.Tier
	Reached  domain.Tier
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not reach tier %d after %d attempt(s) in %s (last tier %d)",
		e.Method, int(e.Target), e.Attempts, e.Elapsed.Round(time.Millisecond), int(e.Reached))
}

// Unwrap lets errors.Is find ErrCompilationTimeout
func (e *TimeoutError) Unwrap() error {
	return ErrCompilationTimeout
}

// State is the per-method compilation lifecycle
type State int

const (
	Uncompiled State = iota
	Warming
	CompiledAtTier
	DumpCaptured
)

func (s State) String() string {
	switch s {
	case Uncompiled:
		return "UNCOMPILED"
	case Warming:
		return "WARMING"
	case CompiledAtTier:
		return "COMPILED_AT_TIER"
	case DumpCaptured:
		return "DUMP_CAPTURED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options bound the warm-up loop
type Options struct {
	TargetTier            domain.Tier
	WarmupBatch           int           // Invocations between tier polls
	MaxAttempts           int           // Polls before giving up
	InitialBackoff        time.Duration // First wait between polls
	MaxBackoff            time.Duration // Cap for the doubling wait
	Timeout               time.Duration // Wall-clock budget for one method
	RepresentativeRetries int           // Redraws when the representative call traps
}

// ArgSource yields the arguments for the next invocation
type ArgSource interface {
	Next() []domain.Value
}

// Compilation records how a method reached its target tier
type Compilation struct {
	Method         string
	State          State
	Tier           domain.Tier
	Attempts       int
	Invocations    int
	Traps          int
	Representative []domain.Value
	Recompiled     bool // The method was already at the tier and was deoptimized first
	Elapsed        time.Duration
}

// MarkCaptured moves the compilation to its final state once the dump has been taken
func (c *Compilation) MarkCaptured() {
	if c.State == CompiledAtTier {
		c.State = DumpCaptured
	}
}

// Driver promotes methods to a target tier on a runtime
type Driver struct {
	rt    runtime.Runtime
	opts  Options
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Driver
func New(rt runtime.Runtime, opts Options) *Driver {
	if opts.WarmupBatch <= 0 {
		opts.WarmupBatch = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = opts.InitialBackoff
	}
	return &Driver{rt: rt, opts: opts, now: time.Now, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Compile enables the dump for the case's phase, warms the method up until the runtime
// reports the target tier and then makes one representative call.
// A method that already runs at the target tier is deoptimized first, so the compile that
// gets captured is one made with this case's phase dump enabled.
// A *TimeoutError is returned when the budget runs out; runtime errors are returned as is.
func (d *Driver) Compile(ctx context.Context, tc domain.TestCase, args ArgSource) (*Compilation, error) {
	c := &Compilation{Method: tc.Method, State: Uncompiled}
	start := d.now()

	if err := d.rt.SetTargetTier(tc.Method, d.opts.TargetTier); err != nil {
		return c, fmt.Errorf("set target tier: %w", err)
	}
	if err := d.rt.EnableDump(tc.Method, tc.Phase); err != nil {
		return c, fmt.Errorf("enable dump: %w", err)
	}
	tier, err := d.rt.Tier(tc.Method)
	if err != nil {
		return c, fmt.Errorf("poll tier: %w", err)
	}
	if tier >= d.opts.TargetTier {
		if err := d.rt.Deoptimize(tc.Method); err != nil {
			return c, fmt.Errorf("deoptimize: %w", err)
		}
		c.Recompiled = true
	}

	c.State = Warming
	polls := d.pollSchedule(ctx)
	for {
		c.Attempts++
		for range d.opts.WarmupBatch {
			if err := d.invoke(c, args.Next()); err != nil {
				return c, err
			}
		}

		tier, err := d.rt.Tier(tc.Method)
		if err != nil {
			return c, fmt.Errorf("poll tier: %w", err)
		}
		c.Tier = tier
		if tier >= d.opts.TargetTier {
			c.State = CompiledAtTier
			break
		}

		wait := polls.NextBackOff()
		if wait == backoff.Stop {
			if err := ctx.Err(); err != nil {
				return c, err
			}
			break
		}
		if err := d.sleep(ctx, wait); err != nil {
			return c, err
		}
	}

	c.Elapsed = d.now().Sub(start)
	if c.State != CompiledAtTier {
		return c, &TimeoutError{
			Method:   tc.Method,
			Target:   d.opts.TargetTier,
			Reached:  c.Tier,
			Attempts: c.Attempts,
			Elapsed:  c.Elapsed,
		}
	}

	for i := 0; i <= d.opts.RepresentativeRetries; i++ {
		a := args.Next()
		trapped := c.Traps
		if err := d.invoke(c, a); err != nil {
			return c, err
		}
		if c.Traps == trapped {
			c.Representative = a
			break
		}
	}
	c.Elapsed = d.now().Sub(start)
	return c, nil
}

// pollSchedule builds the wait schedule between tier polls: doubling from InitialBackoff up to
// MaxBackoff, at most MaxAttempts polls, and no wait that would end past Timeout.
func (d *Driver) pollSchedule(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = d.opts.InitialBackoff
	exp.MaxInterval = d.opts.MaxBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = d.opts.Timeout
	exp.Clock = clockFunc(d.now)

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(d.opts.MaxAttempts-1)), ctx)
	b.Reset()
	return b
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

func (d *Driver) invoke(c *Compilation, args []domain.Value) error {
	inv, err := d.rt.Invoke(c.Method, args)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", c.Method, err)
	}
	c.Invocations++
	if inv.Trapped {
		c.Traps++
	}
	return nil
}
