// Package suite holds the built-in test cases and loads additional suites from YAML files.
package suite

import "irverify/internal/domain"

// DivSmallPathName is the suite name of the built-in cases
const DivSmallPathName = "TestDivSmallPath"

// Dividend is the compile-time constant divided by the "Fast" cases
const Dividend int64 = 500

// DivSmallPath returns the cases checking that the amd64 backend drops the
// overflow guard of a division whose dividend is a known constant.
// "Fast" cases divide Dividend by a random divisor and require the guard-free node;
// "Normal" cases take both operands as parameters and must not produce the guard-free modulo.
func DivSmallPath() []domain.TestCase {
	ops := []struct {
		op   domain.Op
		name string
		fast domain.NodeKind
	}{
		{domain.OpDiv, "Div", domain.NodeX86DivRegFast},
		{domain.OpDivMod, "DivMod", domain.NodeX86DivModRegFast},
		{domain.OpMod, "Mod", domain.NodeX86ModRegFast},
	}
	types := []struct {
		t    domain.ValueType
		name string
	}{
		{domain.TypeInt, "Int"},
		{domain.TypeLong, "Long"},
	}

	var cases []domain.TestCase
	for _, variant := range []string{"Fast", "Normal"} {
		for _, typ := range types {
			for _, op := range ops {
				name := "test" + op.name + typ.name + variant
				tc := domain.TestCase{
					Name:     name,
					Suite:    DivSmallPathName,
					Method:   name,
					Phase:    domain.PhaseFinalCode,
					Requires: []domain.Arch{domain.ArchAMD64},
				}
				if variant == "Fast" {
					dividend := Dividend
					tc.Params = []domain.ArgSpec{domain.RandomEach(typ.t)}
					tc.Rules = []domain.Rule{domain.Exactly(op.fast, 1)}
					tc.Body = &domain.MethodBody{Op: op.op, Type: typ.t, Dividend: &dividend}
				} else {
					tc.Params = []domain.ArgSpec{domain.RandomEach(typ.t), domain.RandomEach(typ.t)}
					tc.Rules = []domain.Rule{domain.FailOn(domain.NodeX86ModRegFast)}
					tc.Body = &domain.MethodBody{Op: op.op, Type: typ.t}
				}
				cases = append(cases, tc)
			}
		}
	}
	return cases
}
