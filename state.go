package ostinato

import (
	"gopkg.in/yaml.v3"
)

// State is the checkpoint a caller threads from one generation call to the
// next so a generator can resume mid-pattern. It is rebuilt wholesale at
// every call exit and never retained inside the engine; callers persist it
// themselves, e.g. as yaml between the movements of a multi-part run.
type State struct {
	// SpansConsumed is the cumulative number of input spans filled so far.
	SpansConsumed int `yaml:"spans_consumed"`

	// GroupsProduced is the cumulative number of logical tied-event runs
	// produced so far. A run tied over from the previous call into the next
	// is counted once, not twice.
	GroupsProduced int `yaml:"groups_produced"`

	// IncompleteLastGroup is set when the call ended mid-count, so that the
	// last produced run continues into the next call.
	IncompleteLastGroup bool `yaml:"incomplete_last_group,omitempty"`

	// WeightConsumed is the cumulative absolute talea weight consumed, in
	// the talea's own units. Unused by curve-based generation.
	WeightConsumed int `yaml:"weight_consumed,omitempty"`
}

// ReadState parses a yaml-serialized state.
func ReadState(data []byte) (State, error) {
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s, nil
}

// WriteState serializes a state as yaml.
func WriteState(s State) ([]byte, error) {
	return yaml.Marshal(s)
}
