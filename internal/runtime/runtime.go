// Package runtime defines the compiler/runtime collaborator the harness drives,
// with an in-process simulator and a client for runtimes in another process.
package runtime

import (
	"errors"

	"irverify/internal/domain"
)

// ErrRuntimeCrashed marks a failure of the collaborator itself. It is fatal to the whole run.
var ErrRuntimeCrashed = errors.New("runtime crashed")

// ErrUnknownMethod is returned for calls naming a method the runtime does not have
var ErrUnknownMethod = errors.New("unknown method")

// Invocation is the observable result of calling a method once
type Invocation struct {
	Trapped bool    `json:"trapped"` // The call raised an arithmetic trap (division by zero)
	Result  []int64 `json:"result,omitempty"`
}

// Runtime is the compiler and execution environment the harness drives
type Runtime interface {
	// Arch returns the instruction-set target the runtime compiles for.
	Arch() domain.Arch
	// SetTargetTier selects the tier a method must reach before it counts as compiled.
	SetTargetTier(method string, tier domain.Tier) error
	// EnableDump turns on phase dump emission for method before it is compiled.
	EnableDump(method string, phase domain.Phase) error
	// Deoptimize discards the method's compiled code so its next compile honours the current dump settings.
	Deoptimize(method string) error
	// Invoke calls the method once.
	Invoke(method string, args []domain.Value) (Invocation, error)
	// Tier returns the highest tier the method's current code was compiled at.
	Tier(method string) (domain.Tier, error)
	// Dump returns the compile log for method and phase. ok is false when the phase never ran.
	Dump(method string, phase domain.Phase) (text string, ok bool, err error)
	Close() error
}

// Registrar is implemented by runtimes that can define methods from a body description
type Registrar interface {
	Register(method string, body domain.MethodBody) error
}
