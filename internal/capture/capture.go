// Package capture extracts one phase of a method's compile log from the runtime.
package capture

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"irverify/internal/domain"
	"irverify/internal/matcher"
	"irverify/internal/runtime"
)

var (
	compileOpen = regexp.MustCompile(`^<compile method='([^']*)' tier='(\d+)' arch='([^']*)'>$`)
	phaseOpen   = regexp.MustCompile(`^<phase name='([^']*)'>$`)
)

const (
	compileClose = "</compile>"
	phaseClose   = "</phase>"
)

// Block is one compile recorded in a log
type Block struct {
	Method string
	Tier   domain.Tier
	Arch   domain.Arch
	Phases map[domain.Phase]string
}

// Capturer fetches phase dumps from a runtime
type Capturer struct {
	rt runtime.Runtime
}

// New creates a Capturer
func New(rt runtime.Runtime) *Capturer {
	return &Capturer{rt: rt}
}

// Capture returns the phase dump of the most recent compile of method at or above tier.
// A phase that never ran produces an empty artifact, not an error.
func (c *Capturer) Capture(method string, phase domain.Phase, tier domain.Tier) (domain.CompiledArtifact, error) {
	art := domain.CompiledArtifact{Method: method, Phase: phase, Arch: c.rt.Arch(), Tier: tier, Empty: true}

	text, ok, err := c.rt.Dump(method, phase)
	if err != nil {
		return art, fmt.Errorf("dump %s/%s: %w", method, phase, err)
	}
	if !ok || strings.TrimSpace(text) == "" {
		return art, nil
	}

	blocks, err := ParseLog(text)
	if err != nil {
		return art, fmt.Errorf("dump %s/%s: %w", method, phase, err)
	}

	var chosen *Block
	for i := range blocks {
		b := &blocks[i]
		if b.Method != method {
			return art, fmt.Errorf("dump %s/%s: log contains compile of %s", method, phase, b.Method)
		}
		if b.Arch != art.Arch {
			return art, fmt.Errorf("dump %s/%s: compiled for %s, runtime reports %s", method, phase, b.Arch, art.Arch)
		}
		if b.Tier >= tier {
			chosen = b
		}
	}
	if chosen == nil {
		return art, nil
	}

	body, ok := chosen.Phases[phase]
	if !ok {
		return art, nil
	}
	art.Tier = chosen.Tier
	art.Text = body
	art.Empty = strings.TrimSpace(body) == ""
	return art, nil
}

// ParseLog splits a compile log into its blocks, oldest first
func ParseLog(text string) ([]Block, error) {
	var (
		blocks  []Block
		current *Block
		phase   domain.Phase
		inPhase bool
		body    strings.Builder
		lineNo  int
	)

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), matcher.MaxLineSize)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case inPhase && trimmed == phaseClose:
			current.Phases[phase] = body.String()
			body.Reset()
			inPhase = false
		case inPhase:
			body.WriteString(line)
			body.WriteByte('\n')
		case current == nil:
			if trimmed == "" {
				continue
			}
			m := compileOpen.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("line %d: expected compile header, got %q", lineNo, trimmed)
			}
			tier, _ := strconv.Atoi(m[2])
			arch, err := domain.ParseArch(m[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &Block{Method: m[1], Tier: domain.Tier(tier), Arch: arch, Phases: make(map[domain.Phase]string)}
		case trimmed == compileClose:
			blocks = append(blocks, *current)
			current = nil
		case trimmed == "":
		default:
			m := phaseOpen.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("line %d: unexpected %q outside a phase", lineNo, trimmed)
			}
			p, err := domain.ParsePhase(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			phase = p
			inPhase = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	if current != nil {
		return nil, fmt.Errorf("unterminated compile block for %s", current.Method)
	}
	return blocks, nil
}
