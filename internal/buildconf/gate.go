package buildconf

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Optional quality gate of a pipeline run.
type Gate uint

// Gates in declaration order. Gate stages run in this order.
const (
	UnitTests Gate = iota
	Coverage
	Benchmarks
	Examples
	AddressSanitizer
	ThreadSanitizer
	Format
	Tidy
	Cppcheck
	Docs

	gateCount
)

var gateNames = [gateCount]string{
	UnitTests:        "unit-tests",
	Coverage:         "coverage",
	Benchmarks:       "benchmarks",
	Examples:         "examples",
	AddressSanitizer: "address-sanitizer",
	ThreadSanitizer:  "thread-sanitizer",
	Format:           "format",
	Tidy:             "tidy",
	Cppcheck:         "cppcheck",
	Docs:             "docs",
}

// Returns every gate in declaration order.
func Gates() []Gate {
	gates := make([]Gate, gateCount)
	for i := range gates {
		gates[i] = Gate(i)
	}
	return gates
}

// Returns the gate name, e.g. "unit-tests".
func (g Gate) String() string {
	if g >= gateCount {
		return "unknown"
	}
	return gateNames[g]
}

// Returns true if g is a sanitizer gate.
func (g Gate) Sanitizer() bool {
	return g == AddressSanitizer || g == ThreadSanitizer
}

// Parses a gate name. Underscores are accepted in place of dashes.
func ParseGate(s string) (Gate, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, n := range gateNames {
		if n == name {
			return Gate(i), nil
		}
	}
	return 0, fault.Invalid("gate", "unknown gate %q", s)
}

// Set of enabled gates.
//
// The zero value is the empty set. Sets are values; [GateSet.With] returns a
// new set.
type GateSet uint32

// Creates a new [GateSet] holding the given gates.
func NewGateSet(gates ...Gate) GateSet {
	var s GateSet
	for _, g := range gates {
		s = s.With(g)
	}
	return s
}

// Returns true if g is in the set.
func (s GateSet) Has(g Gate) bool {
	return g < gateCount && s&(1<<g) != 0
}

// Returns a copy of the set with g added.
func (s GateSet) With(g Gate) GateSet {
	if g >= gateCount {
		return s
	}
	return s | 1<<g
}

// Returns the gates in the set, in declaration order.
func (s GateSet) List() []Gate {
	var gates []Gate
	for _, g := range Gates() {
		if s.Has(g) {
			gates = append(gates, g)
		}
	}
	return gates
}

// Returns the gate names in the set, in declaration order.
func (s GateSet) Names() []string {
	gates := s.List()
	names := make([]string, len(gates))
	for i, g := range gates {
		names[i] = g.String()
	}
	return names
}

func (s GateSet) String() string {
	return strings.Join(s.Names(), ",")
}

// Parses a list of gate names.
func ParseGateSet(names []string) (GateSet, error) {
	var s GateSet
	for _, n := range names {
		g, err := ParseGate(n)
		if err != nil {
			return 0, err
		}
		s = s.With(g)
	}
	return s, nil
}

// Implements [json.Marshaler]. Sets are encoded as a list of names.
func (s GateSet) MarshalJSON() ([]byte, error) {
	names := s.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// Implements [json.Unmarshaler].
func (s *GateSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseGateSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Implements [yaml.Marshaler].
func (s GateSet) MarshalYAML() (any, error) {
	return s.Names(), nil
}

// Implements [yaml.Unmarshaler].
func (s *GateSet) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	parsed, err := ParseGateSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
