package domain

import (
	"fmt"
	"strings"
)

// Arch identifies an instruction-set target
type Arch string

const (
	ArchAny     Arch = ""
	ArchAMD64   Arch = "amd64"
	ArchAArch64 Arch = "aarch64"
)

// ParseArch normalizes the common spellings of supported targets
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "amd64", "x86_64", "x64":
		return ArchAMD64, nil
	case "aarch64", "arm64":
		return ArchAArch64, nil
	}
	return ArchAny, fmt.Errorf("unknown architecture %q", s)
}

// Tier is a compilation aggressiveness level
type Tier int

const (
	TierInterpreter Tier = 0
	TierC1Simple    Tier = 1
	TierC1Limited   Tier = 2
	TierC1Full      Tier = 3
	TierC2          Tier = 4
)

func (t Tier) String() string {
	switch t {
	case TierInterpreter:
		return "interpreter"
	case TierC1Simple:
		return "c1-simple"
	case TierC1Limited:
		return "c1-limited"
	case TierC1Full:
		return "c1-full"
	case TierC2:
		return "c2"
	}
	return fmt.Sprintf("tier-%d", int(t))
}

// Valid reports whether t is a known tier
func (t Tier) Valid() bool {
	return t >= TierInterpreter && t <= TierC2
}

// Phase names a compiler pipeline stage whose representation can be dumped
type Phase string

const (
	PhaseAfterParsing   Phase = "AFTER_PARSING"
	PhaseIterGVN1       Phase = "ITER_GVN1"
	PhaseIdealLoop1     Phase = "PHASEIDEALLOOP1"
	PhaseBeforeMatching Phase = "BEFORE_MATCHING"
	PhaseMatching       Phase = "MATCHING"
	PhaseFinalCode      Phase = "FINAL_CODE"
)

// Phases lists every phase in pipeline order
var Phases = []Phase{
	PhaseAfterParsing,
	PhaseIterGVN1,
	PhaseIdealLoop1,
	PhaseBeforeMatching,
	PhaseMatching,
	PhaseFinalCode,
}

// PhaseClass separates machine-independent phases from those after instruction selection
type PhaseClass int

const (
	ClassIdeal PhaseClass = iota
	ClassMach
)

func (c PhaseClass) String() string {
	if c == ClassMach {
		return "mach"
	}
	return "ideal"
}

// Class returns the graph kind printed at this phase
func (p Phase) Class() PhaseClass {
	switch p {
	case PhaseMatching, PhaseFinalCode:
		return ClassMach
	}
	return ClassIdeal
}

// ParsePhase accepts a phase name in any case
func ParsePhase(s string) (Phase, error) {
	name := Phase(strings.ToUpper(strings.TrimSpace(s)))
	for _, p := range Phases {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown compile phase %q", s)
}
