package ostinato

import (
	"fmt"
)

// Duration is an exact rational duration, measured in whole notes: a quarter
// note is 1/4, a dotted eighth 3/16 and so on. Durations are always stored
// reduced, with a positive denominator; the sign lives in the numerator. All
// engine arithmetic happens on Durations so that totals always match exactly,
// with no floating point drift.
type Duration struct {
	Num int64 `yaml:"num"`
	Den int64 `yaml:"den"`
}

// NewDuration returns the reduced rational num/den. A zero denominator is a
// programming defect and panics.
func NewDuration(num, den int64) Duration {
	if den == 0 {
		panic("duration with zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd64(num, den); g > 1 {
		num /= g
		den /= g
	}
	return Duration{Num: num, Den: den}
}

func (d Duration) Add(e Duration) Duration {
	return NewDuration(d.Num*e.Den+e.Num*d.Den, d.Den*e.Den)
}

func (d Duration) Sub(e Duration) Duration {
	return NewDuration(d.Num*e.Den-e.Num*d.Den, d.Den*e.Den)
}

func (d Duration) Mul(e Duration) Duration {
	return NewDuration(d.Num*e.Num, d.Den*e.Den)
}

// Div divides d by e; dividing by a zero duration panics.
func (d Duration) Div(e Duration) Duration {
	return NewDuration(d.Num*e.Den, d.Den*e.Num)
}

func (d Duration) Neg() Duration {
	return Duration{Num: -d.Num, Den: d.Den}
}

func (d Duration) Abs() Duration {
	if d.Num < 0 {
		return d.Neg()
	}
	return d
}

// Cmp returns -1, 0 or 1 when d is less than, equal to or greater than e.
func (d Duration) Cmp(e Duration) int {
	diff := d.Num*e.Den - e.Num*d.Den
	switch {
	case diff < 0:
		return -1
	case diff > 0:
		return 1
	}
	return 0
}

func (d Duration) Less(e Duration) bool {
	return d.Cmp(e) < 0
}

func (d Duration) Equal(e Duration) bool {
	return d.Num == e.Num && d.Den == e.Den
}

func (d Duration) IsZero() bool {
	return d.Num == 0
}

// Sign returns -1, 0 or 1 according to the sign of the duration.
func (d Duration) Sign() int {
	switch {
	case d.Num < 0:
		return -1
	case d.Num > 0:
		return 1
	}
	return 0
}

// Float converts the duration to a float64. Only the interpolation sampler
// should do arithmetic on the result; everything else stays rational.
func (d Duration) Float() float64 {
	return float64(d.Num) / float64(d.Den)
}

func (d Duration) String() string {
	return fmt.Sprintf("%d/%d", d.Num, d.Den)
}

// HasPowerOfTwoDenominator reports whether the reduced denominator is a power
// of two, which is a precondition for spelling the duration as notes or rests.
func (d Duration) HasPowerOfTwoDenominator() bool {
	return isPowerOfTwo(d.Den)
}

// IsAssignable reports whether the duration can be written as a single note
// head: the denominator is a power of two and the numerator has no "01"
// substring in binary, i.e. plain, dotted, double- or triple-dotted values
// below four whole notes.
func (d Duration) IsAssignable() bool {
	if d.Num <= 0 || !isPowerOfTwo(d.Den) {
		return false
	}
	if d.Cmp(Duration{Num: 16, Den: 1}) >= 0 {
		return false
	}
	// the binary numerator must be a run of ones followed by a run of
	// zeros: plain, dotted, double- or triple-dotted values only
	n := d.Num
	for n&1 == 0 {
		n >>= 1
	}
	return n&(n+1) == 0
}

// SumDurations returns the exact sum of durations.
func SumDurations(durations []Duration) Duration {
	total := Duration{Num: 0, Den: 1}
	for _, d := range durations {
		total = total.Add(d)
	}
	return total
}

// LCD returns the least common denominator of the reduced durations.
func LCD(durations []Duration) int64 {
	ret := int64(1)
	for _, d := range durations {
		ret = lcm64(ret, d.Den)
	}
	return ret
}

func gcd64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm64(a, b int64) int64 {
	return a / gcd64(a, b) * b
}

func isPowerOfTwo(n int64) bool {
	return n > 0 && n&(n-1) == 0
}
