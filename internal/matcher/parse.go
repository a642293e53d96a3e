package matcher

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Instruction is one node line of a phase dump
type Instruction struct {
	ID       int
	Name     string
	Inputs   []string
	Outputs  []string
	Operands string
	Line     int // 1-based line number in the dump
}

// MaxLineSize is the longest dump line the parsers accept
const MaxLineSize = 4 * 1024 * 1024

// nodeLine matches "  <id>  <Name>  === <inputs>  [[ <outputs> ]]  <operands>"
var nodeLine = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+===\s*([^\[]*?)\s*\[\[\s*([^\]]*?)\s*\]\]\s*(.*)$`)

// ParseLine parses one dump line. It returns false for lines that are not nodes
// (block labels, headers, blank lines).
func ParseLine(line string) (Instruction, bool) {
	m := nodeLine.FindStringSubmatch(line)
	if m == nil {
		return Instruction{}, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return Instruction{}, false
	}
	return Instruction{
		ID:       id,
		Name:     m[2],
		Inputs:   strings.Fields(m[3]),
		Outputs:  strings.Fields(m[4]),
		Operands: strings.TrimSpace(m[5]),
	}, true
}

// Parse splits a dump into instructions, one per node line.
// A line longer than MaxLineSize is an error, never a silent end of the dump.
func Parse(text string) ([]Instruction, error) {
	var out []Instruction
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	n := 0
	for sc.Scan() {
		n++
		ins, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		ins.Line = n
		out = append(out, ins)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dump line %d: %w", n+1, err)
	}
	return out, nil
}
