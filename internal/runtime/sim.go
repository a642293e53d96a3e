package runtime

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"irverify/internal/domain"
)

// SimConfig tunes the simulated tiering policy
type SimConfig struct {
	Arch           domain.Arch
	C1Threshold    int           // Invocations before a tier 3 compile is queued
	C2Threshold    int           // Invocations before a tier 4 compile is queued
	CompileLatency time.Duration // Time between queuing a compile and installing the code
	Exclude        []string      // Methods that are never compiled
}

// DefaultSimConfig mirrors the shape of a tiered JIT with small thresholds
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Arch:           domain.ArchAMD64,
		C1Threshold:    200,
		C2Threshold:    1000,
		CompileLatency: 2 * time.Millisecond,
	}
}

type pendingCompile struct {
	tier    domain.Tier
	readyAt time.Time
}

type simMethod struct {
	name        string
	body        domain.MethodBody
	target      domain.Tier
	dumps       map[domain.Phase]bool
	invocations int
	tier        domain.Tier
	pending     *pendingCompile
	logs        map[domain.Phase][]string
}

// Sim is an in-process model of a tiered JIT compiler. It executes registered division
// methods, promotes them through tiers by invocation count and writes phase dumps for
// its C2 compiles. It is safe for concurrent use.
type Sim struct {
	mu      sync.Mutex
	cfg     SimConfig
	now     func() time.Time
	methods map[string]*simMethod
}

// NewSim creates a simulator
func NewSim(cfg SimConfig) *Sim {
	if cfg.Arch == domain.ArchAny {
		cfg.Arch = domain.ArchAMD64
	}
	if cfg.C1Threshold <= 0 {
		cfg.C1Threshold = 1
	}
	if cfg.C2Threshold < cfg.C1Threshold {
		cfg.C2Threshold = cfg.C1Threshold
	}
	return &Sim{
		cfg:     cfg,
		now:     time.Now,
		methods: make(map[string]*simMethod),
	}
}

// Register defines a method from its body description
func (s *Sim) Register(method string, body domain.MethodBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.methods[method]; ok {
		if sameBody(existing.body, body) {
			return nil
		}
		return fmt.Errorf("method %s already registered with a different body", method)
	}
	s.methods[method] = &simMethod{
		name:   method,
		body:   body,
		target: domain.TierC2,
		dumps:  make(map[domain.Phase]bool),
		logs:   make(map[domain.Phase][]string),
	}
	return nil
}

func sameBody(a, b domain.MethodBody) bool {
	if a.Op != b.Op || a.Type != b.Type {
		return false
	}
	if a.Dividend == nil || b.Dividend == nil {
		return a.Dividend == nil && b.Dividend == nil
	}
	return *a.Dividend == *b.Dividend
}

func (s *Sim) lookup(method string) (*simMethod, error) {
	m, ok := s.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return m, nil
}

// Arch returns the simulated target
func (s *Sim) Arch() domain.Arch {
	return s.cfg.Arch
}

// SetTargetTier records the tier the method must reach
func (s *Sim) SetTargetTier(method string, tier domain.Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("invalid tier %d", tier)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(method)
	if err != nil {
		return err
	}
	m.target = tier
	return nil
}

// EnableDump turns on dump emission for a phase of the method's next compiles
func (s *Sim) EnableDump(method string, phase domain.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(method)
	if err != nil {
		return err
	}
	m.dumps[phase] = true
	return nil
}

// Deoptimize drops the installed code and any queued compile; warm-up starts over
func (s *Sim) Deoptimize(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(method)
	if err != nil {
		return err
	}
	m.tier = domain.TierInterpreter
	m.invocations = 0
	m.pending = nil
	return nil
}

// Invoke executes the method and drives the tiering policy
func (s *Sim) Invoke(method string, args []domain.Value) (Invocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(method)
	if err != nil {
		return Invocation{}, err
	}
	if len(args) != m.body.Params() {
		return Invocation{}, fmt.Errorf("%s takes %d argument(s), got %d", method, m.body.Params(), len(args))
	}

	s.advance(m)
	m.invocations++
	s.maybeQueue(m)

	return execute(m.body, args), nil
}

// Tier reports the tier of the method's installed code
func (s *Sim) Tier(method string) (domain.Tier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(method)
	if err != nil {
		return 0, err
	}
	s.advance(m)
	return m.tier, nil
}

// Dump returns every compile block recorded for the phase, oldest first
func (s *Sim) Dump(method string, phase domain.Phase) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lookup(method)
	if err != nil {
		return "", false, err
	}
	blocks := m.logs[phase]
	if len(blocks) == 0 {
		return "", false, nil
	}
	return strings.Join(blocks, ""), true, nil
}

// Close releases nothing; the simulator holds no external resources
func (s *Sim) Close() error {
	return nil
}

func (s *Sim) maybeQueue(m *simMethod) {
	if m.pending != nil || slices.Contains(s.cfg.Exclude, m.name) {
		return
	}
	var next domain.Tier
	switch {
	case m.tier < domain.TierC2 && m.invocations >= s.cfg.C2Threshold:
		next = domain.TierC2
	case m.tier < domain.TierC1Full && m.invocations >= s.cfg.C1Threshold:
		next = domain.TierC1Full
	default:
		return
	}
	m.pending = &pendingCompile{tier: next, readyAt: s.now().Add(s.cfg.CompileLatency)}
}

// advance installs a queued compile once its latency has elapsed
func (s *Sim) advance(m *simMethod) {
	if m.pending == nil || s.now().Before(m.pending.readyAt) {
		return
	}
	tier := m.pending.tier
	m.pending = nil
	m.tier = tier
	if tier != domain.TierC2 {
		return
	}
	for phase := range m.dumps {
		lines := emit(m.body, s.cfg.Arch, phase)
		if lines == nil {
			continue
		}
		m.logs[phase] = append(m.logs[phase], compileBlock(m.name, tier, s.cfg.Arch, phase, lines))
	}
}

func execute(body domain.MethodBody, args []domain.Value) Invocation {
	var dividend, divisor int64
	if body.Dividend != nil {
		dividend, divisor = *body.Dividend, args[0].Bits
	} else {
		dividend, divisor = args[0].Bits, args[1].Bits
	}
	if divisor == 0 {
		return Invocation{Trapped: true}
	}

	var q, r int64
	if body.Type == domain.TypeInt {
		a, b := int32(dividend), int32(divisor)
		q, r = int64(a/b), int64(a%b)
	} else {
		q, r = dividend/divisor, dividend%divisor
	}

	switch body.Op {
	case domain.OpMod:
		return Invocation{Result: []int64{r}}
	case domain.OpDivMod:
		return Invocation{Result: []int64{q, r}}
	}
	return Invocation{Result: []int64{q}}
}

func compileBlock(method string, tier domain.Tier, arch domain.Arch, phase domain.Phase, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<compile method='%s' tier='%d' arch='%s'>\n", method, int(tier), arch)
	fmt.Fprintf(&b, "<phase name='%s'>\n", phase)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("</phase>\n</compile>\n")
	return b.String()
}
