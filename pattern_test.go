package ostinato_test

import (
	"testing"

	"github.com/veelahti/ostinato"
)

func TestPatternMatches(t *testing.T) {
	p := ostinato.Pattern{Indices: []int{0, 2}, Period: 5}
	want := map[int]bool{0: true, 2: true, 5: true, 7: true}
	for i := 0; i < 10; i++ {
		if got := p.Matches(i, 10); got != want[i] {
			t.Errorf("Matches(%d) = %v, want %v", i, got, want[i])
		}
	}
}

func TestPatternZeroPeriodUsesTotal(t *testing.T) {
	// index -1 counts from the end
	p := ostinato.Pattern{Indices: []int{-1}}
	for total := 1; total <= 4; total++ {
		for i := 0; i < total; i++ {
			want := i == total-1
			if got := p.Matches(i, total); got != want {
				t.Errorf("Matches(%d, %d) = %v, want %v", i, total, got, want)
			}
		}
	}
}

func TestPatternZeroValueMatchesNothing(t *testing.T) {
	var p ostinato.Pattern
	for i := 0; i < 5; i++ {
		if p.Matches(i, 5) {
			t.Errorf("zero pattern matched index %d", i)
		}
	}
}

func TestMatchAll(t *testing.T) {
	p := ostinato.MatchAll()
	for i := 0; i < 5; i++ {
		if !p.Matches(i, 5) {
			t.Errorf("MatchAll did not match index %d", i)
		}
	}
}
