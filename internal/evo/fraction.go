package evo

import (
	"math"
	"strconv"
)

// Fraction is a probability in the closed range [0.0, 1.0].
type Fraction struct {
	v float64
}

// NewFraction validates n and wraps it. Values outside [0.0, 1.0], NaN
// included, are rejected with a *RangeError.
func NewFraction(n float64) (Fraction, error) {
	if math.IsNaN(n) || n < 0.0 || n > 1.0 {
		return Fraction{}, &RangeError{Value: n}
	}
	return Fraction{v: n}, nil
}

// MustFraction wraps n without checking its range. Reserved for constants
// known to be valid.
func MustFraction(n float64) Fraction {
	return Fraction{v: n}
}

// ParseFraction parses s as a float and validates it with NewFraction.
func ParseFraction(s string) (Fraction, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Fraction{}, &ParseError{Input: s, Err: err}
	}
	return NewFraction(n)
}

func (f Fraction) Value() float64 {
	return f.v
}

func (f Fraction) String() string {
	return strconv.FormatFloat(f.v, 'g', -1, 64)
}
