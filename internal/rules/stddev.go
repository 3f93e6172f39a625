package rules

import (
	"math"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/stats"
)

const (
	// StdDevName is the registry name of the standard-deviation rule
	StdDevName = "sd"
	// DefaultStdDevK is the accepted distance from the mean in standard deviations
	DefaultStdDevK = 2.0
)

// StdDevParams are the population moments of the training data
type StdDevParams struct {
	MeanSBP float64 `json:"mean_sbp"`
	MeanDBP float64 `json:"mean_dbp"`
	VarSBP  float64 `json:"var_sbp"`
	VarDBP  float64 `json:"var_dbp"`
}

// NewStdDev creates a rule accepting measurements within k standard
// deviations of the training mean, on both SBP and DBP
func NewStdDev(k float64) *Func[StdDevParams] {
	return NewFunc(StdDevName, fitStdDev, func(p StdDevParams, data []models.Measurement) []bool {
		return applyStdDev(p, k, data)
	})
}

func fitStdDev(data []models.Measurement) (StdDevParams, error) {
	sbp, dbp, sbpOK, dbpOK := split(data)

	sbpValues := present(sbp, sbpOK)
	if len(sbpValues) == 0 {
		return StdDevParams{}, &models.InsufficientDataError{Series: "sbp", Have: 0, Need: 1}
	}
	dbpValues := present(dbp, dbpOK)
	if len(dbpValues) == 0 {
		return StdDevParams{}, &models.InsufficientDataError{Series: "dbp", Have: 0, Need: 1}
	}

	var p StdDevParams
	p.MeanSBP, p.VarSBP = stats.MeanVariance(sbpValues)
	p.MeanDBP, p.VarDBP = stats.MeanVariance(dbpValues)
	return p, nil
}

func applyStdDev(p StdDevParams, k float64, data []models.Measurement) []bool {
	sbpLimit := k * math.Sqrt(p.VarSBP)
	dbpLimit := k * math.Sqrt(p.VarDBP)

	out := make([]bool, len(data))
	for i, m := range data {
		if !m.HasSBP() || !m.HasDBP() {
			continue
		}
		out[i] = math.Abs(float64(m.SBP)-p.MeanSBP) <= sbpLimit &&
			math.Abs(float64(m.DBP)-p.MeanDBP) <= dbpLimit
	}
	return out
}
