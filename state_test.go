package ostinato_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veelahti/ostinato"
)

func TestStateRoundTrip(t *testing.T) {
	s := ostinato.State{
		SpansConsumed:       4,
		GroupsProduced:      8,
		IncompleteLastGroup: true,
		WeightConsumed:      31,
	}
	data, err := ostinato.WriteState(s)
	require.NoError(t, err)
	got, err := ostinato.ReadState(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestStateYamlKeys(t *testing.T) {
	data, err := ostinato.WriteState(ostinato.State{SpansConsumed: 1, GroupsProduced: 2})
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "spans_consumed: 1"), "got %q", text)
	assert.True(t, strings.Contains(text, "groups_produced: 2"), "got %q", text)
	// zero-valued optional fields stay out of the file
	assert.False(t, strings.Contains(text, "weight_consumed"), "got %q", text)
}

func TestReadStateRejectsGarbage(t *testing.T) {
	_, err := ostinato.ReadState([]byte("{broken"))
	assert.Error(t, err)
}
