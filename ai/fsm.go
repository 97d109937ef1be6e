package ai

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var ErrUnknownState = errors.New("ai: unknown state")

//go:embed default_fsm.yaml
var defaultFSM []byte

// StateDef is the behavior of one state. A zero Duration never expires.
type StateDef struct {
	Duration    float64
	Drive       float64
	Turn        float64
	AimAtTarget bool
	Fire        bool
}

// Table is a compiled FSM: states plus the event transition table.
type Table struct {
	Initial     StateID
	States      map[StateID]StateDef
	Transitions map[StateID]map[EventID]StateID
}

// Next returns the state reached from from on ev.
func (t *Table) Next(from StateID, ev EventID) (StateID, bool) {
	if t == nil {
		return "", false
	}
	to, ok := t.Transitions[from][ev]
	return to, ok
}

type RawTable struct {
	Initial     string                       `yaml:"initial"`
	States      map[string]RawState          `yaml:"states"`
	Transitions map[string]map[string]string `yaml:"transitions"`
}

type RawState struct {
	Duration float64 `yaml:"duration"`
	Drive    float64 `yaml:"drive"`
	Turn     float64 `yaml:"turn"`
	Aim      bool    `yaml:"aim"`
	Fire     bool    `yaml:"fire"`
}

// Compile validates raw and builds a Table.
func Compile(raw RawTable) (*Table, error) {
	if raw.Initial == "" {
		return nil, fmt.Errorf("ai: missing initial state")
	}
	if len(raw.States) == 0 {
		return nil, fmt.Errorf("ai: no states")
	}

	states := make(map[StateID]StateDef, len(raw.States))
	for name, s := range raw.States {
		if s.Duration < 0 {
			return nil, fmt.Errorf("ai: state %s: negative duration", name)
		}
		states[StateID(name)] = StateDef{
			Duration:    s.Duration,
			Drive:       s.Drive,
			Turn:        s.Turn,
			AimAtTarget: s.Aim,
			Fire:        s.Fire,
		}
	}
	if _, ok := states[StateID(raw.Initial)]; !ok {
		return nil, fmt.Errorf("ai: initial %q: %w", raw.Initial, ErrUnknownState)
	}

	transitions := make(map[StateID]map[EventID]StateID, len(raw.Transitions))
	for from, evs := range raw.Transitions {
		fromID := StateID(from)
		if _, ok := states[fromID]; !ok {
			return nil, fmt.Errorf("ai: transition from %q: %w", from, ErrUnknownState)
		}
		transitions[fromID] = make(map[EventID]StateID, len(evs))
		for ev, to := range evs {
			if !knownEvents[EventID(ev)] {
				return nil, fmt.Errorf("ai: transition %s.%s: unknown event", from, ev)
			}
			if _, ok := states[StateID(to)]; !ok {
				return nil, fmt.Errorf("ai: transition %s.%s to %q: %w", from, ev, to, ErrUnknownState)
			}
			transitions[fromID][EventID(ev)] = StateID(to)
		}
	}

	return &Table{
		Initial:     StateID(raw.Initial),
		States:      states,
		Transitions: transitions,
	}, nil
}

// LoadTable parses and compiles a YAML FSM table.
func LoadTable(data []byte) (*Table, error) {
	var raw RawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ai: unmarshal: %w", err)
	}
	return Compile(raw)
}

// DefaultTable returns the built-in tank behavior. Paired states (advance
// and retreat, the two strafes, the two recover turns) swap into each other
// when the tank collides.
func DefaultTable() *Table {
	t, err := LoadTable(defaultFSM)
	if err != nil {
		panic(err)
	}
	return t
}
