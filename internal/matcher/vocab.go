package matcher

import (
	"regexp"

	"irverify/internal/domain"
)

// Recognizer matches one node kind. It is scoped to an arch (ArchAny for ideal nodes)
// and to the class of phase whose dumps contain such nodes.
type Recognizer struct {
	Kind     domain.NodeKind
	Arch     domain.Arch
	Class    domain.PhaseClass
	Name     *regexp.Regexp
	Operands *regexp.Regexp // nil accepts any operand text
	Doc      string
}

// Matches reports whether ins is an occurrence of the recognizer's kind
func (r Recognizer) Matches(ins Instruction) bool {
	if !r.Name.MatchString(ins.Name) {
		return false
	}
	return r.Operands == nil || r.Operands.MatchString(ins.Operands)
}

// AppliesTo reports whether the recognizer may be used on dumps from arch
func (r Recognizer) AppliesTo(arch domain.Arch) bool {
	return r.Arch == domain.ArchAny || r.Arch == arch
}

var (
	x86RegDiv    = regexp.MustCompile(`= rax / r[a-z0-9]+\b`)
	x86RegMod    = regexp.MustCompile(`rdx = rax % r[a-z0-9]+\b`)
	x86RegDivMod = regexp.MustCompile(`rax, rdx = rax divmod r[a-z0-9]+\b`)
	a64SDiv      = regexp.MustCompile(`= sdiv [wx]\d+, [wx]\d+`)
	a64MSub      = regexp.MustCompile(`= msub `)
)

func ideal(kind domain.NodeKind, name, doc string) Recognizer {
	return Recognizer{
		Kind:  kind,
		Arch:  domain.ArchAny,
		Class: domain.ClassIdeal,
		Name:  regexp.MustCompile(`^` + name + `$`),
		Doc:   doc,
	}
}

func mach(kind domain.NodeKind, arch domain.Arch, name string, operands *regexp.Regexp, doc string) Recognizer {
	return Recognizer{
		Kind:     kind,
		Arch:     arch,
		Class:    domain.ClassMach,
		Name:     regexp.MustCompile(`^` + name + `$`),
		Operands: operands,
		Doc:      doc,
	}
}

// DefaultVocabulary returns the recognizer for every node kind
func DefaultVocabulary() map[domain.NodeKind]Recognizer {
	list := []Recognizer{
		ideal(domain.NodeDivI, `DivI`, "32-bit division"),
		ideal(domain.NodeDivL, `DivL`, "64-bit division"),
		ideal(domain.NodeModI, `ModI`, "32-bit remainder"),
		ideal(domain.NodeModL, `ModL`, "64-bit remainder"),
		ideal(domain.NodeDivModI, `DivModI`, "fused 32-bit division and remainder"),
		ideal(domain.NodeDivModL, `DivModL`, "fused 64-bit division and remainder"),

		mach(domain.NodeX86DivRegFast, domain.ArchAMD64, `div[IL]_rReg_fast`, x86RegDiv,
			"idiv on register operands, special-case guard elided"),
		mach(domain.NodeX86ModRegFast, domain.ArchAMD64, `mod[IL]_rReg_fast`, x86RegMod,
			"idiv remainder on register operands, special-case guard elided"),
		mach(domain.NodeX86DivModRegFast, domain.ArchAMD64, `divMod[IL]_rReg_divmod_fast`, x86RegDivMod,
			"idiv producing quotient and remainder, special-case guard elided"),
		mach(domain.NodeX86DivReg, domain.ArchAMD64, `div[IL]_rReg`, x86RegDiv,
			"idiv with MIN_VALUE / -1 guard"),
		mach(domain.NodeX86ModReg, domain.ArchAMD64, `mod[IL]_rReg`, x86RegMod,
			"idiv remainder with MIN_VALUE / -1 guard"),
		mach(domain.NodeX86DivModReg, domain.ArchAMD64, `divMod[IL]_rReg_divmod`, x86RegDivMod,
			"idiv quotient and remainder with MIN_VALUE / -1 guard"),

		mach(domain.NodeAArch64SDiv, domain.ArchAArch64, `div[IL]`, a64SDiv, "sdiv"),
		mach(domain.NodeAArch64Mod, domain.ArchAArch64, `mod[IL]`, a64MSub, "sdiv followed by msub"),
	}
	vocab := make(map[domain.NodeKind]Recognizer, len(list))
	for _, r := range list {
		vocab[r.Kind] = r
	}
	return vocab
}
