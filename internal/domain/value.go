package domain

import (
	"fmt"
	"math"
	"strconv"
)

// ValueType is the declared numeric type of a method parameter
type ValueType string

const (
	TypeInt  ValueType = "int"
	TypeLong ValueType = "long"
)

// Min returns the smallest value representable by t
func (t ValueType) Min() int64 {
	if t == TypeInt {
		return math.MinInt32
	}
	return math.MinInt64
}

// Max returns the largest value representable by t
func (t ValueType) Max() int64 {
	if t == TypeInt {
		return math.MaxInt32
	}
	return math.MaxInt64
}

// Contains reports whether v fits in t
func (t ValueType) Contains(v int64) bool {
	return v >= t.Min() && v <= t.Max()
}

// Valid reports whether t is a supported parameter type
func (t ValueType) Valid() bool {
	return t == TypeInt || t == TypeLong
}

// Value is one typed argument passed to a method under test
type Value struct {
	Type ValueType `json:"type"`
	Bits int64     `json:"value"`
}

// Int returns v narrowed to 32 bits
func (v Value) Int() int32 {
	return int32(v.Bits)
}

func (v Value) String() string {
	if v.Type == TypeLong {
		return strconv.FormatInt(v.Bits, 10) + "L"
	}
	return strconv.FormatInt(v.Bits, 10)
}

// ArgStrategy selects how a parameter value is produced for each invocation
type ArgStrategy string

const (
	ArgDefault    ArgStrategy = "default"
	ArgFixed      ArgStrategy = "fixed"
	ArgMin        ArgStrategy = "min"
	ArgMax        ArgStrategy = "max"
	ArgRandomOnce ArgStrategy = "random_once"
	ArgRandomEach ArgStrategy = "random_each"
)

// ArgSpec declares one parameter of a method under test
type ArgSpec struct {
	Type     ValueType   `json:"type" yaml:"type"`
	Strategy ArgStrategy `json:"strategy" yaml:"strategy"`
	Fixed    int64       `json:"fixed,omitempty" yaml:"value,omitempty"`
}

// RandomEach is shorthand for a parameter redrawn on every call
func RandomEach(t ValueType) ArgSpec {
	return ArgSpec{Type: t, Strategy: ArgRandomEach}
}

// FixedArg is shorthand for a parameter bound to a constant
func FixedArg(t ValueType, v int64) ArgSpec {
	return ArgSpec{Type: t, Strategy: ArgFixed, Fixed: v}
}

// Validate checks that the strategy and value fit the parameter type
func (a ArgSpec) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("unsupported parameter type %q", a.Type)
	}
	switch a.Strategy {
	case ArgDefault, ArgMin, ArgMax, ArgRandomOnce, ArgRandomEach:
		return nil
	case ArgFixed:
		if !a.Type.Contains(a.Fixed) {
			return fmt.Errorf("fixed value %d does not fit in %s", a.Fixed, a.Type)
		}
		return nil
	}
	return fmt.Errorf("unknown argument strategy %q", a.Strategy)
}
