package rules

import "fmt"

// Confusion compares a rule's rejections with the known anomalies. A rejected
// anomalous sample is a true positive.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// Score builds the confusion counts of verdicts against anomalous, where
// anomalous[i] marks samples taken in a non-normal state
func Score(verdicts, anomalous []bool) (Confusion, error) {
	if len(verdicts) != len(anomalous) {
		return Confusion{}, fmt.Errorf("verdict count %d does not match ground truth count %d", len(verdicts), len(anomalous))
	}

	var c Confusion
	for i, accepted := range verdicts {
		switch {
		case !accepted && anomalous[i]:
			c.TP++
		case !accepted:
			c.FP++
		case anomalous[i]:
			c.FN++
		default:
			c.TN++
		}
	}
	return c, nil
}

// Precision is the share of rejections that were anomalous
func (c Confusion) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

// Recall is the share of anomalies that were rejected
func (c Confusion) Recall() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// Accuracy is the share of samples judged correctly
func (c Confusion) Accuracy() float64 {
	total := c.TP + c.FP + c.TN + c.FN
	if total == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(total)
}
