package history

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date prefix expected at the start of timestamp cells
const DateLayout = "2006-01-02"

// Value is a nullable numeric cell
type Value struct {
	Float float64
	Valid bool
}

// Some returns a valid Value
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Null is the absent Value
var Null = Value{}

// Series is an ordered column of nullable values
type Series []Value

// Present returns the valid values in order
func (s Series) Present() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Valid {
			out = append(out, v.Float)
		}
	}
	return out
}

// DatedReading is one diary row reduced to its calendar date and BP pair
type DatedReading struct {
	Date time.Time
	SBP  Value
	DBP  Value
}

// Complete reports whether both values are present
func (r DatedReading) Complete() bool {
	return r.SBP.Valid && r.DBP.Valid
}

// Provider supplies historical diary data to the core
type Provider interface {
	// LoadSeries returns one column in row order
	LoadSeries(column string) (Series, error)
	// LoadDated returns (date, sbp, dbp) triples in row order
	LoadDated(sbpCol, dbpCol, dateCol string) ([]DatedReading, error)
}

// Columns names the diary columns the core reads
type Columns struct {
	SBP  string `yaml:"sbp_col"`
	DBP  string `yaml:"dbp_col"`
	Date string `yaml:"dt_col"`
}

// DefaultColumns returns the column names of the standard diary export
func DefaultColumns() Columns {
	return Columns{
		SBP:  "SBP",
		DBP:  "DBP",
		Date: "Datetime",
	}
}

// ParseValue converts a raw cell into a Value. Empty, NA, NaN and null cells are absent.
func ParseValue(cell string) (Value, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null", "none":
		return Null, nil
	}

	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return Null, fmt.Errorf("invalid numeric cell %q: %w", cell, err)
	}
	if math.IsNaN(f) {
		return Null, nil
	}
	return Some(f), nil
}

// ParseDate reads the calendar date from the first 10 characters of a timestamp
func ParseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if len(cell) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date cell %q", cell)
	}
	d, err := time.Parse(DateLayout, cell[:len(DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date cell %q: %w", cell, err)
	}
	return d, nil
}
