package evo

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrEmptyAlphabet   = errors.New("alphabet is empty")
	ErrFitnessExists   = errors.New("fitness already registered")
	ErrFitnessNotFound = errors.New("fitness not found")
)

// RangeError reports a fraction outside [0.0, 1.0].
type RangeError struct {
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s is not in the [0.0, 1.0] range", strconv.FormatFloat(e.Value, 'g', -1, 64))
}

// ParseError reports text that is not a real number.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed parsing into a float: %s", e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a breeder that cannot be built from the supplied
// settings.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
