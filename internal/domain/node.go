package domain

import (
	"fmt"
	"strings"
)

// NodeKind is a recognized instruction pattern counted in a phase dump.
// The set is closed; each kind has exactly one recognizer in the matcher vocabulary.
type NodeKind int

const (
	NodeUnknown NodeKind = iota

	// Ideal graph nodes, any arch.
	NodeDivI
	NodeDivL
	NodeModI
	NodeModL
	NodeDivModI
	NodeDivModL

	// amd64 mach nodes.
	NodeX86DivRegFast
	NodeX86ModRegFast
	NodeX86DivModRegFast
	NodeX86DivReg
	NodeX86ModReg
	NodeX86DivModReg

	// aarch64 mach nodes.
	NodeAArch64SDiv
	NodeAArch64Mod

	nodeKindCount
)

var nodeKindNames = [...]string{
	NodeUnknown:          "UNKNOWN",
	NodeDivI:             "DIV_I",
	NodeDivL:             "DIV_L",
	NodeModI:             "MOD_I",
	NodeModL:             "MOD_L",
	NodeDivModI:          "DIV_MOD_I",
	NodeDivModL:          "DIV_MOD_L",
	NodeX86DivRegFast:    "X86_DIV_REG_FAST",
	NodeX86ModRegFast:    "X86_MOD_REG_FAST",
	NodeX86DivModRegFast: "X86_DIVMOD_REG_FAST",
	NodeX86DivReg:        "X86_DIV_REG",
	NodeX86ModReg:        "X86_MOD_REG",
	NodeX86DivModReg:     "X86_DIVMOD_REG",
	NodeAArch64SDiv:      "AARCH64_SDIV",
	NodeAArch64Mod:       "AARCH64_MOD",
}

func (k NodeKind) String() string {
	if k < 0 || k >= nodeKindCount {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return nodeKindNames[k]
}

// AllNodeKinds returns every known kind in declaration order
func AllNodeKinds() []NodeKind {
	kinds := make([]NodeKind, 0, nodeKindCount-1)
	for k := NodeUnknown + 1; k < nodeKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseNodeKind maps a kind name back to its tag
func ParseNodeKind(s string) (NodeKind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k := NodeUnknown + 1; k < nodeKindCount; k++ {
		if nodeKindNames[k] == name {
			return k, nil
		}
	}
	return NodeUnknown, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText encodes the kind by name
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *NodeKind) UnmarshalText(b []byte) error {
	parsed, err := ParseNodeKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
