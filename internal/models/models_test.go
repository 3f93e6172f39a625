package models

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdsClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		sbp, dbp float64
		ok       bool
		want     State
	}{
		{"normal", 120, 80, true, StateNormal},
		{"lower bounds inclusive", 80, 50, true, StateNormal},
		{"systolic upper bound exclusive", 180, 80, true, StateBad},
		{"diastolic upper bound exclusive", 120, 120, true, StateBad},
		{"low systolic", 70, 60, true, StateBad},
		{"low diastolic", 120, 40, true, StateBad},
		{"null reading", 0, 0, false, StateMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Classify(tt.sbp, tt.dbp, tt.ok))
		})
	}
}

func TestMeasurementSentinels(t *testing.T) {
	assert.True(t, MissingMeasurement.IsMissing())
	assert.False(t, MissingMeasurement.HasSBP())
	assert.False(t, MissingMeasurement.HasDBP())

	partial := Measurement{SBP: 120, DBP: Missing}
	assert.False(t, partial.IsMissing())
	assert.True(t, partial.HasSBP())
	assert.False(t, partial.HasDBP())
	assert.Equal(t, "120/-1", partial.String())
}

func TestParseState(t *testing.T) {
	for _, s := range States {
		got, err := ParseState(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseState("critical")
	assert.Error(t, err)
}

func TestReadingHelpers(t *testing.T) {
	readings := []Reading{
		NewReading("run", 1, 11, StateNormal, Measurement{SBP: 120, DBP: 80}),
		NewReading("run", 2, 35, StateMissing, MissingMeasurement),
		NewReading("run", 3, 59, StateBad, Measurement{SBP: 190, DBP: 70}),
	}

	assert.Equal(t, 1, readings[1].Day)
	assert.Equal(t, SchemaVersion, readings[0].SchemaVersion)
	assert.Equal(t, []Measurement{{120, 80}, MissingMeasurement, {190, 70}}, Measurements(readings))
	assert.Equal(t, []bool{false, true, true}, GroundTruth(readings))
}

func TestErrorsUnwrap(t *testing.T) {
	assert.True(t, errors.Is(&InvalidSampleError{}, ErrInvalidSample))
	assert.True(t, errors.Is(&InsufficientDataError{Series: "sbp", Have: 1, Need: 2}, ErrInsufficientData))
	assert.True(t, errors.Is(&NotFittedError{Rule: "sd"}, ErrNotFitted))

	nf := &NotFoundError{Source: "diary.tsv", Err: fs.ErrNotExist}
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.True(t, errors.Is(nf, fs.ErrNotExist))
	assert.Contains(t, nf.Error(), "diary.tsv")
}
