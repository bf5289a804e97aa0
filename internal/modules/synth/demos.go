package synth

import (
	"errors"
	"sort"
)

// ErrUnknownDemo is returned when no demo circuit matches the requested name.
var ErrUnknownDemo = errors.New("unknown demo circuit")

type demoGate struct {
	name   string
	qubits []int
}

// Predefined three-qubit showcase circuits.
var demoCircuits = map[string][]demoGate{
	"superposition": {
		{name: "h", qubits: []int{0}},
		{name: "h", qubits: []int{1}},
	},
	"mixed_states": {
		{name: "x", qubits: []int{0}},
		{name: "h", qubits: []int{1}},
		{name: "h", qubits: []int{2}},
	},
	"entanglement": {
		{name: "h", qubits: []int{0}},
		{name: "cx", qubits: []int{0, 1}},
		{name: "cx", qubits: []int{1, 2}},
	},
}

// DemoNames lists the available demo circuits in stable order.
func DemoNames() []string {
	names := make([]string, 0, len(demoCircuits))
	for name := range demoCircuits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// demoQubitSpan returns the highest qubit index a demo touches, plus one.
func demoQubitSpan(gates []demoGate) int {
	span := 0
	for _, g := range gates {
		for _, q := range g.qubits {
			if q+1 > span {
				span = q + 1
			}
		}
	}
	return span
}
