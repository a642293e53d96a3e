// Package arggen produces argument values for methods under test.
package arggen

import (
	"hash/fnv"
	"math/rand/v2"

	"irverify/internal/domain"
)

// boundaryDraw is the chance (1 in N) that a random draw comes from the boundary set
const boundaryDraw = 8

// Generator yields one value per declared parameter for each invocation.
// It is owned by a single worker and is not safe for concurrent use.
type Generator struct {
	params []domain.ArgSpec
	rng    *rand.Rand
	once   []domain.Value
}

// New creates a generator for the test case. The sequence depends only on seed and the case ID,
// so scheduling across workers does not change the values a case sees.
func New(seed uint64, tc domain.TestCase) *Generator {
	h := fnv.New64a()
	h.Write([]byte(tc.ID()))

	g := &Generator{
		params: tc.Params,
		rng:    rand.New(rand.NewPCG(seed, h.Sum64())),
		once:   make([]domain.Value, len(tc.Params)),
	}
	for i, p := range tc.Params {
		if p.Strategy == domain.ArgRandomOnce {
			g.once[i] = g.random(p.Type)
		}
	}
	return g
}

// Next returns the arguments for one invocation
func (g *Generator) Next() []domain.Value {
	args := make([]domain.Value, len(g.params))
	for i, p := range g.params {
		args[i] = g.value(i, p)
	}
	return args
}

func (g *Generator) value(i int, p domain.ArgSpec) domain.Value {
	switch p.Strategy {
	case domain.ArgFixed:
		return domain.Value{Type: p.Type, Bits: p.Fixed}
	case domain.ArgMin:
		return domain.Value{Type: p.Type, Bits: p.Type.Min()}
	case domain.ArgMax:
		return domain.Value{Type: p.Type, Bits: p.Type.Max()}
	case domain.ArgRandomOnce:
		return g.once[i]
	case domain.ArgRandomEach:
		return g.random(p.Type)
	}
	return domain.Value{Type: p.Type}
}

// random draws from the full range of t, mixing in boundary values so that
// zero and the type minimum stay reachable.
func (g *Generator) random(t domain.ValueType) domain.Value {
	if g.rng.IntN(boundaryDraw) == 0 {
		return domain.Value{Type: t, Bits: Boundaries(t)[g.rng.IntN(len(Boundaries(t)))]}
	}
	if t == domain.TypeInt {
		return domain.Value{Type: t, Bits: int64(int32(g.rng.Uint32()))}
	}
	return domain.Value{Type: t, Bits: int64(g.rng.Uint64())}
}

// Boundaries returns the special values random draws must be able to hit
func Boundaries(t domain.ValueType) []int64 {
	return []int64{0, 1, -1, t.Min(), t.Max()}
}
