// Package duration provides rational musical time values.
//
// A Value is a fraction of a whole note, stored in ticks where a whole
// note is 1024 ticks (quarter = 256, eighth = 128, ...). All scaling
// operations mutate in place and return the receiver so they can be
// chained; callers that need a side-effect-free copy must Clone first.
package duration

import (
	"fmt"
	"strconv"
)

// WholeTicks is the tick value of a whole note. Every Value is a
// positive fraction or multiple of this unit.
const WholeTicks = 1024.0

// Value is a musical duration in ticks.
//
// INVARIANT: the tick value is strictly positive. Any operation that
// would make it zero or negative is a programming error and panics.
type Value struct {
	ticks float64
}

// FromDenominator creates a Value from a note-type denominator:
// 1 = whole, 2 = half, 4 = quarter, 0.5 = breve.
func FromDenominator(d float64) *Value {
	if d <= 0 {
		panic(fmt.Sprintf("duration: non-positive denominator %v", d))
	}
	return &Value{ticks: WholeTicks / d}
}

// FromToken creates a Value from a named duration token.
//
// Recognized names are "breve", "whole", "half", "quarter", "eighth"
// and numeric forms with a two-character ordinal suffix ("16th",
// "32nd", "64th", ...). Unknown names return *UnknownTokenError.
func FromToken(name string) (*Value, error) {
	switch name {
	case "breve":
		return FromDenominator(0.5), nil
	case "whole":
		return FromDenominator(1), nil
	case "half":
		return FromDenominator(2), nil
	case "quarter":
		return FromDenominator(4), nil
	case "eighth":
		return FromDenominator(8), nil
	}
	if len(name) > 2 {
		n, err := strconv.Atoi(name[:len(name)-2])
		if err == nil && n > 0 {
			return FromDenominator(float64(n)), nil
		}
	}
	return nil, &UnknownTokenError{Token: name}
}

// Whole returns a whole-note Value.
func Whole() *Value { return FromDenominator(1) }

// Quarter returns a quarter-note Value.
func Quarter() *Value { return FromDenominator(4) }

// Ticks returns the duration in ticks.
func (v *Value) Ticks() float64 { return v.ticks }

// Denominator returns the note-type denominator (4 for a quarter).
func (v *Value) Denominator() float64 { return WholeTicks / v.ticks }

// Clone returns an independent copy.
func (v *Value) Clone() *Value { return &Value{ticks: v.ticks} }

// Equal reports whether two values have the same underlying ratio,
// regardless of how they were constructed.
func (v *Value) Equal(o *Value) bool { return v.ticks == o.ticks }

// Less reports whether v is strictly shorter than o.
func (v *Value) Less(o *Value) bool { return v.ticks < o.ticks }

// Half halves the value in place and returns it.
func (v *Value) Half() *Value {
	return v.scale(0.5)
}

// Dot applies a single dot (×3/2) in place and returns the value.
func (v *Value) Dot() *Value {
	return v.scale(1.5)
}

// NDot applies n dots in place: the value is multiplied by
// sum(1/2^i) for i in 0..n.
func (v *Value) NDot(n int) *Value {
	return v.scale(DotMultiplier(n))
}

// Triplet applies triplet scaling (×2/3) in place and returns the value.
func (v *Value) Triplet() *Value {
	return v.scale(2.0 / 3.0)
}

// NTuplet applies tuplet scaling in place: actual notes are played in
// the time of normal notes, so the value is multiplied by normal/actual.
func (v *Value) NTuplet(actual, normal int) *Value {
	if actual <= 0 || normal <= 0 {
		panic(fmt.Sprintf("duration: invalid tuplet %d:%d", actual, normal))
	}
	return v.scale(float64(normal) / float64(actual))
}

func (v *Value) scale(f float64) *Value {
	v.ticks *= f
	if v.ticks <= 0 {
		panic(fmt.Sprintf("duration: scale by %v produced non-positive value", f))
	}
	return v
}

func (v *Value) String() string {
	return fmt.Sprintf("%gt", v.ticks)
}

// DotMultiplier returns sum(1/2^i) for i in 0..dots.
func DotMultiplier(dots int) float64 {
	m := 0.0
	for i := 0; i <= dots; i++ {
		m += 1 / float64(int(1)<<i)
	}
	return m
}

// UnknownTokenError reports a duration name that is neither a
// recognized word nor of the form "<int>th".
type UnknownTokenError struct {
	Token string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown duration token %q", e.Token)
}
