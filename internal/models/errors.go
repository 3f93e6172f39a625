package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSample    = errors.New("invalid sample")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNotFitted        = errors.New("not fitted")
	ErrNotFound         = errors.New("not found")
)

// InvalidSampleError is returned when a distribution is built from an empty sample
type InvalidSampleError struct {
	Size int
}

func (e *InvalidSampleError) Error() string {
	return fmt.Sprintf("invalid sample: need at least 1 value, got %d", e.Size)
}

func (e *InvalidSampleError) Unwrap() error {
	return ErrInvalidSample
}

// InsufficientDataError is returned when a series has too few usable values
type InsufficientDataError struct {
	Series string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data in %s: need at least %d values, got %d", e.Series, e.Need, e.Have)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// NotFittedError is returned when a rule or filter is applied before fitting
type NotFittedError struct {
	Rule string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("rule %s: apply called before fit", e.Rule)
}

func (e *NotFittedError) Unwrap() error {
	return ErrNotFitted
}

// NotFoundError is returned by data providers when the source does not exist
type NotFoundError struct {
	Source string
	Err    error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not found: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s not found", e.Source)
}

// Unwrap exposes both the sentinel and the underlying cause
func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotFound}
	}
	return []error{ErrNotFound, e.Err}
}
