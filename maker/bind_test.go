package maker_test

import (
	"strings"
	"testing"

	"github.com/veelahti/ostinato"
	"github.com/veelahti/ostinato/maker"
)

func TestBindFirstMatchWins(t *testing.T) {
	notes, err := maker.NewTaleaMaker([]int{1, 2, 3, 4}, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	rests, err := maker.NewTaleaMaker([]int{-6}, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	b := maker.Bind{Assignments: []maker.Assignment{
		{Maker: rests, Predicate: func(i int, span ostinato.Duration) bool { return i == 1 }},
		{Maker: notes}, // matches everything else
	}}
	result, err := b.Allocate(spans([2]int64{3, 8}, [2]int64{3, 8}, [2]int64{3, 8}), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "{ c16 c8 c8. } { r4. } { c16 c8 c8. }"
	if got := voiceString(result.Groups); got != want {
		t.Errorf("voice = %q, want %q", got, want)
	}
}

func TestBindNoMatch(t *testing.T) {
	notes, err := maker.NewTaleaMaker([]int{1}, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	b := maker.Bind{Assignments: []maker.Assignment{
		{Maker: notes, Pattern: &ostinato.Pattern{Indices: []int{0}, Period: 2}},
	}}
	_, err = b.Allocate(spans([2]int64{1, 4}, [2]int64{1, 4}), nil)
	if err == nil || !strings.Contains(err.Error(), "no assignment matches span 1") {
		t.Errorf("err = %v, want a no-match error for span 1", err)
	}
}

func TestBindNoAssignments(t *testing.T) {
	b := maker.Bind{}
	if _, err := b.Allocate(spans([2]int64{1, 4}), nil); err == nil {
		t.Errorf("an empty bind should fail")
	}
}

func TestBindRemembersStateAcrossGaps(t *testing.T) {
	cyclic, err := maker.NewTaleaMaker([]int{1, 2, 3, 4}, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	filler, err := maker.NewTaleaMaker([]int{6}, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	even := func(i int, span ostinato.Duration) bool { return i%2 == 0 }

	forgetful := maker.Bind{Assignments: []maker.Assignment{
		{Maker: cyclic, Predicate: even},
		{Maker: filler},
	}}
	result, err := forgetful.Allocate(spans([2]int64{3, 8}, [2]int64{3, 8}, [2]int64{3, 8}), nil)
	if err != nil {
		t.Fatal(err)
	}
	// without memory the gap resets the pattern
	if got, want := voiceString(result.Groups), "{ c16 c8 c8. } { c4. } { c16 c8 c8. }"; got != want {
		t.Errorf("voice = %q, want %q", got, want)
	}

	remembering := maker.Bind{Assignments: []maker.Assignment{
		{Maker: cyclic, Predicate: even, RememberStateAcrossGaps: true},
		{Maker: filler},
	}}
	result, err = remembering.Allocate(spans([2]int64{3, 8}, [2]int64{3, 8}, [2]int64{3, 8}), nil)
	if err != nil {
		t.Fatal(err)
	}
	// with memory the third span continues where the first left off
	if got, want := voiceString(result.Groups), "{ c16 c8 c8. } { c4. } { c4 c16 c16 }"; got != want {
		t.Errorf("voice = %q, want %q", got, want)
	}
	if got := result.MakerStates[0].WeightConsumed; got != 12 {
		t.Errorf("remembered weight = %d, want 12", got)
	}
	if got := result.MakerStates[0].SpansConsumed; got != 2 {
		t.Errorf("remembered spans = %d, want 2", got)
	}
}

func TestBindAsMaker(t *testing.T) {
	notes, err := maker.NewTaleaMaker([]int{1, 2, 3, 4}, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	var m maker.Maker = maker.Bind{Assignments: []maker.Assignment{{Maker: notes}}}
	groups, state, err := m.Make(spans([2]int64{3, 8}, [2]int64{3, 8}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if state.SpansConsumed != 2 {
		t.Errorf("spans consumed = %d, want 2", state.SpansConsumed)
	}
}
