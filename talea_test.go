package ostinato_test

import (
	"reflect"
	"testing"

	"github.com/veelahti/ostinato"
)

func TestNewTaleaValidates(t *testing.T) {
	if _, err := ostinato.NewTalea(nil, 16, nil, nil); err == nil {
		t.Errorf("empty counts should be rejected")
	}
	if _, err := ostinato.NewTalea([]int{1, 2}, 12, nil, nil); err == nil {
		t.Errorf("denominator 12 should be rejected")
	}
	if _, err := ostinato.NewTalea([]int{1, 2}, 16, nil, nil); err != nil {
		t.Errorf("valid talea rejected: %v", err)
	}
}

func TestTaleaPeriod(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{1, 2, 3, 4}, 16, []int{1, 1}, []int{5})
	if err != nil {
		t.Fatal(err)
	}
	// preamble and end counts make no difference
	if got := talea.Period(); got != 10 {
		t.Errorf("period = %d, want 10", got)
	}
	if got := talea.Len(); got != 4 {
		t.Errorf("len = %d, want 4", got)
	}
}

func TestTaleaAt(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{2, 1, 3, 2, 4, 1, 1}, 16, []int{1, 1, 1, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		index int
		want  ostinato.Duration
	}{
		{0, ostinato.NewDuration(1, 16)},
		{3, ostinato.NewDuration(1, 16)},
		{4, ostinato.NewDuration(2, 16)},
		{5, ostinato.NewDuration(1, 16)},
		{6, ostinato.NewDuration(3, 16)},
		{11, ostinato.NewDuration(1, 16)}, // wraps to index 0
		{-1, ostinato.NewDuration(1, 16)},
	}
	for _, test := range tests {
		if got := talea.At(test.index); !got.Equal(test.want) {
			t.Errorf("At(%d) = %v, want %v", test.index, got, test.want)
		}
	}
}

func TestTaleaContains(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{10}, 16, []int{1, -1, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]bool{1: true, 2: true, 3: true, 13: true, 23: true}
	for offset := 1; offset < 24; offset++ {
		if got := talea.Contains(offset); got != want[offset] {
			t.Errorf("Contains(%d) = %v, want %v", offset, got, want[offset])
		}
	}
}

func TestTaleaContainsWrapsPeriod(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{1, 2, 3, 4}, 16, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// boundaries fall at 0, 1, 3, 6 modulo the period of 10
	for _, offset := range []int{1, 3, 6, 10, 11, 13, 16, 20, 30} {
		if !talea.Contains(offset) {
			t.Errorf("Contains(%d) = false, want true", offset)
		}
	}
	for _, offset := range []int{2, 4, 5, 7, 8, 9, 12, 19} {
		if talea.Contains(offset) {
			t.Errorf("Contains(%d) = true, want false", offset)
		}
	}
}

func TestTaleaAdvance(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{2, 1, 3, 2, 4, 1, 1}, 16, []int{1, 1, 1, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		weight       int
		wantPreamble []int
		wantCounts   []int
	}{
		{0, []int{1, 1, 1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
		{1, []int{1, 1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
		{2, []int{1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
		{4, nil, []int{2, 1, 3, 2, 4, 1, 1}},
		{5, []int{1, 1, 3, 2, 4, 1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
		{6, []int{1, 3, 2, 4, 1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
		{7, []int{3, 2, 4, 1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
		{8, []int{2, 2, 4, 1, 1}, []int{2, 1, 3, 2, 4, 1, 1}},
	}
	for _, test := range tests {
		got, err := talea.Advance(test.weight)
		if err != nil {
			t.Fatalf("Advance(%d): %v", test.weight, err)
		}
		if !reflect.DeepEqual(got.Preamble, test.wantPreamble) {
			t.Errorf("Advance(%d) preamble = %v, want %v", test.weight, got.Preamble, test.wantPreamble)
		}
		if !reflect.DeepEqual(got.Counts, test.wantCounts) {
			t.Errorf("Advance(%d) counts = %v, want %v", test.weight, got.Counts, test.wantCounts)
		}
	}
}

func TestTaleaAdvanceExactPeriod(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{1, 2, 3, 4}, 16, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// an exact multiple of the period never produces a full-cycle preamble
	for _, weight := range []int{10, 20, 30} {
		got, err := talea.Advance(weight)
		if err != nil {
			t.Fatalf("Advance(%d): %v", weight, err)
		}
		if got.Preamble != nil {
			t.Errorf("Advance(%d) preamble = %v, want none", weight, got.Preamble)
		}
	}
}

func TestTaleaAdvancePreservesSigns(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{3, -4, 2}, 16, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := talea.Advance(4)
	if err != nil {
		t.Fatal(err)
	}
	// the rest count -4 is cut one unit in; both halves stay silent
	if want := []int{-3, 2}; !reflect.DeepEqual(got.Preamble, want) {
		t.Errorf("preamble = %v, want %v", got.Preamble, want)
	}
}

func TestTaleaAdvanceNegative(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{1, 2}, 16, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := talea.Advance(-1); err == nil {
		t.Errorf("negative advance should be rejected")
	}
}

func TestTaleaCopyIsDeep(t *testing.T) {
	talea, err := ostinato.NewTalea([]int{1, 2}, 16, []int{3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := talea.Copy()
	c.Counts[0] = 99
	c.Preamble[0] = 99
	if talea.Counts[0] != 1 || talea.Preamble[0] != 3 {
		t.Errorf("mutating the copy changed the original")
	}
}
