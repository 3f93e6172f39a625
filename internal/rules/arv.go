package rules

import (
	"math"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/stats"
)

const (
	// ARVName is the registry name of the average real variability rule
	ARVName = "arv"
	// DefaultARVK is the accepted excess over the mean ARV in standard deviations
	DefaultARVK = 3.0
)

// ARVParams hold the training means and the moments of the running average
// real variability of each series
type ARVParams struct {
	MeanSBP    float64 `json:"mean_sbp"`
	MeanDBP    float64 `json:"mean_dbp"`
	ARVMeanSBP float64 `json:"arv_mean_sbp"`
	ARVMeanDBP float64 `json:"arv_mean_dbp"`
	ARVVarSBP  float64 `json:"arv_var_sbp"`
	ARVVarDBP  float64 `json:"arv_var_dbp"`
}

// ThresholdSBP returns the largest accepted systolic jump for k
func (p ARVParams) ThresholdSBP(k float64) float64 {
	return p.ARVMeanSBP + k*math.Sqrt(p.ARVVarSBP)
}

// ThresholdDBP returns the largest accepted diastolic jump for k
func (p ARVParams) ThresholdDBP(k float64) float64 {
	return p.ARVMeanDBP + k*math.Sqrt(p.ARVVarDBP)
}

// NewARV creates a rule accepting a measurement when its jump from the most
// recent measured value stays within the ARV threshold, on both SBP and DBP
func NewARV(k float64) *Func[ARVParams] {
	return NewFunc(ARVName, fitARV, func(p ARVParams, data []models.Measurement) []bool {
		return applyARV(p, k, data)
	})
}

func fitARV(data []models.Measurement) (ARVParams, error) {
	sbp, dbp, sbpOK, dbpOK := split(data)

	var p ARVParams
	var err error
	if p.MeanSBP, p.ARVMeanSBP, p.ARVVarSBP, err = arvMoments("sbp", sbp, sbpOK); err != nil {
		return ARVParams{}, err
	}
	if p.MeanDBP, p.ARVMeanDBP, p.ARVVarDBP, err = arvMoments("dbp", dbp, dbpOK); err != nil {
		return ARVParams{}, err
	}
	return p, nil
}

// arvMoments interpolates across gaps and returns the mean of the measured
// values with the mean and variance of the running ARV sequence
func arvMoments(series string, values []float64, ok []bool) (mean, arvMean, arvVar float64, err error) {
	filled, enough := stats.Interpolate(values, ok)
	if !enough {
		return 0, 0, 0, &models.InsufficientDataError{Series: series, Have: len(present(values, ok)), Need: 2}
	}

	arv := stats.RunningMean(stats.AbsDiffs(filled))
	arvMean, arvVar = stats.MeanVariance(arv)
	return stats.Mean(present(values, ok)), arvMean, arvVar, nil
}

func applyARV(p ARVParams, k float64, data []models.Measurement) []bool {
	sbpLimit := p.ThresholdSBP(k)
	dbpLimit := p.ThresholdDBP(k)

	prevSBP, prevDBP := p.MeanSBP, p.MeanDBP

	out := make([]bool, len(data))
	for i, m := range data {
		if m.HasSBP() && m.HasDBP() {
			out[i] = math.Abs(float64(m.SBP)-prevSBP) <= sbpLimit &&
				math.Abs(float64(m.DBP)-prevDBP) <= dbpLimit
		}
		if m.HasSBP() {
			prevSBP = float64(m.SBP)
		}
		if m.HasDBP() {
			prevDBP = float64(m.DBP)
		}
	}
	return out
}
