package runtime

import (
	"fmt"
	"strings"

	"irverify/internal/domain"
)

// nodeWriter numbers nodes as they are printed
type nodeWriter struct {
	lines []string
	next  int
}

func (w *nodeWriter) node(name string, inputs []int, operands string) int {
	id := w.next
	w.next++
	in := make([]string, len(inputs))
	for i, v := range inputs {
		if v < 0 {
			in[i] = "_"
		} else {
			in[i] = fmt.Sprint(v)
		}
	}
	line := fmt.Sprintf("%4d  %s  === %s  [[ %d ]]", id, name, strings.Join(in, " "), id+1)
	if operands != "" {
		line += "  " + operands
	}
	w.lines = append(w.lines, line)
	return id
}

func (w *nodeWriter) label(text string) {
	w.lines = append(w.lines, text)
}

// suffix returns the node-name width marker for the body's type
func suffix(t domain.ValueType) string {
	if t == domain.TypeLong {
		return "L"
	}
	return "I"
}

// fastPath reports whether the divide can never hit MIN_VALUE / -1.
// A constant dividend other than the type minimum rules it out.
func fastPath(body domain.MethodBody) bool {
	return body.Dividend != nil && *body.Dividend != body.Type.Min()
}

// emit renders the method's graph at phase. It returns nil for phases that do not
// run on these loop-free methods.
func emit(body domain.MethodBody, arch domain.Arch, phase domain.Phase) []string {
	if phase == domain.PhaseIdealLoop1 {
		return nil
	}
	if phase.Class() == domain.ClassIdeal {
		return emitIdeal(body, phase)
	}
	if arch == domain.ArchAArch64 {
		return emitAArch64(body, phase)
	}
	return emitAMD64(body, phase)
}

func emitIdeal(body domain.MethodBody, phase domain.Phase) []string {
	w := &nodeWriter{next: 5}
	sfx := suffix(body.Type)

	var dividend int
	if body.Dividend != nil {
		dividend = w.node("Con"+sfx, []int{0}, fmt.Sprintf("#%s:%d", body.Type, *body.Dividend))
	} else {
		dividend = w.node("Parm", []int{3}, "Parm0: "+string(body.Type))
	}
	divisor := w.node("Parm", []int{3}, fmt.Sprintf("Parm%d: %s", body.Params()-1, body.Type))

	var result int
	switch body.Op {
	case domain.OpDiv:
		result = w.node("Div"+sfx, []int{-1, dividend, divisor}, "")
	case domain.OpMod:
		result = w.node("Mod"+sfx, []int{-1, dividend, divisor}, "")
	case domain.OpDivMod:
		if phase == domain.PhaseBeforeMatching {
			fused := w.node("DivMod"+sfx, []int{-1, dividend, divisor}, "")
			quot := w.node("Proj", []int{fused}, "#0")
			rem := w.node("Proj", []int{fused}, "#1")
			w.node("CallStaticJava", []int{rem}, "# Static consume")
			result = quot
		} else {
			quot := w.node("Div"+sfx, []int{-1, dividend, divisor}, "")
			rem := w.node("Mod"+sfx, []int{-1, dividend, divisor}, "")
			w.node("CallStaticJava", []int{rem}, "# Static consume")
			result = quot
		}
	}
	w.node("Return", []int{result}, "")
	return w.lines
}

func emitAMD64(body domain.MethodBody, phase domain.Phase) []string {
	w := &nodeWriter{next: 1}
	sfx := suffix(body.Type)
	final := phase == domain.PhaseFinalCode

	if final {
		w.label("B1: #\tout( N1 ) <- BLOCK HEAD IS JUNK  Freq: 1")
		w.node("MachProlog", []int{-1}, "#framesize 16")
	}
	var in []int
	if body.Dividend != nil {
		c := w.node("loadCon"+sfx, []int{-1}, fmt.Sprintf("#%s rax = #%d", body.Type, *body.Dividend))
		in = []int{-1, c}
	} else {
		in = []int{-1, -1}
	}

	name, guard := "", ""
	if fastPath(body) {
		name = "_fast"
	} else {
		guard = fmt.Sprintf("  (cmp rax, %#x; jne; cmp rcx, -1; je)", uint64(body.Type.Min())&typeMask(body.Type))
	}

	var result int
	switch body.Op {
	case domain.OpDiv:
		result = w.node("div"+sfx+"_rReg"+name, in, fmt.Sprintf("#%s rax = rax / rcx%s", body.Type, guard))
	case domain.OpMod:
		result = w.node("mod"+sfx+"_rReg"+name, in, fmt.Sprintf("#%s rdx = rax %% rcx%s", body.Type, guard))
	case domain.OpDivMod:
		result = w.node("divMod"+sfx+"_rReg_divmod"+name, in, fmt.Sprintf("#%s rax, rdx = rax divmod rcx%s", body.Type, guard))
		w.node("CallStaticJavaDirect", []int{result}, "# Static consume")
	}
	if final {
		w.node("MachEpilog", []int{result}, "")
	}
	w.node("Ret", []int{result}, "")
	return w.lines
}

func emitAArch64(body domain.MethodBody, phase domain.Phase) []string {
	w := &nodeWriter{next: 1}
	sfx := suffix(body.Type)
	reg := "w"
	if body.Type == domain.TypeLong {
		reg = "x"
	}
	if phase == domain.PhaseFinalCode {
		w.label("B1: #\tout( N1 ) <- BLOCK HEAD IS JUNK  Freq: 1")
		w.node("MachProlog", []int{-1}, "#framesize 16")
	}

	in := []int{-1, -1}
	var result int
	switch body.Op {
	case domain.OpDiv:
		result = w.node("div"+sfx, in, fmt.Sprintf("#%s %s0 = sdiv %s1, %s2", body.Type, reg, reg, reg))
	case domain.OpMod:
		result = w.node("mod"+sfx, in, fmt.Sprintf("#%s %s0 = msub %s3, %s2, %s1", body.Type, reg, reg, reg, reg))
	case domain.OpDivMod:
		result = w.node("div"+sfx, in, fmt.Sprintf("#%s %s0 = sdiv %s1, %s2", body.Type, reg, reg, reg))
		rem := w.node("mod"+sfx, in, fmt.Sprintf("#%s %s3 = msub %s0, %s2, %s1", body.Type, reg, reg, reg, reg))
		w.node("CallStaticJavaDirect", []int{rem}, "# Static consume")
	}
	w.node("Ret", []int{result}, "")
	return w.lines
}

func typeMask(t domain.ValueType) uint64 {
	if t == domain.TypeInt {
		return 0xffffffff
	}
	return ^uint64(0)
}
