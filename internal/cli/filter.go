package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/metrics"
	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/output"
	"github.com/synheart/synheart-bpsim/internal/rules"
)

const (
	fitOnHistory = "history"
	fitOnSelf    = "self"
)

var (
	filterFlags    simFlags
	filterReadings string
	filterRules    string
	filterFitOn    string
	filterVerdicts bool
	filterMetrics  string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Evaluate outlier rules against simulated readings",
	Long: `Fits the outlier rules and applies them to a simulated run, scoring each
rule's rejections against the readings taken in an anomalous state.

Readings are simulated on the fly unless --readings names an ndjson log
written by 'bpsim simulate --format ndjson'.`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	filterFlags.register(filterCmd)
	filterCmd.Flags().StringVar(&filterReadings, "readings", "", "Read readings from an ndjson log instead of simulating")
	filterCmd.Flags().StringVar(&filterRules, "rules", strings.Join(rules.DefaultNames, ","), "Comma-separated rules to apply")
	filterCmd.Flags().StringVar(&filterFitOn, "fit-on", fitOnHistory, "Training data: history|self")
	filterCmd.Flags().BoolVar(&filterVerdicts, "verdicts", false, "Include the full verdict matrix in json output")
	filterCmd.Flags().StringVar(&filterMetrics, "metrics-file", "", "Write reading and verdict totals in Prometheus text format")
}

func runFilter(cmd *cobra.Command, args []string) error {
	ruleSet, err := rules.LookupAll(splitList(filterRules))
	if err != nil {
		return err
	}
	if filterFitOn != fitOnHistory && filterFitOn != fitOnSelf {
		return fmt.Errorf("--fit-on must be %s or %s", fitOnHistory, fitOnSelf)
	}

	var (
		readings []models.Reading
		runID    string
		training []models.Measurement
	)

	if filterReadings != "" {
		filterFlags.dataFlags.apply(cfg)
		if readings, err = output.ReadReadingsFile(filterReadings); err != nil {
			return err
		}
		if len(readings) > 0 {
			runID = readings[0].RunID
		}
		if filterFitOn == fitOnHistory {
			profile, err := loadProfile(cfg)
			if err != nil {
				return err
			}
			training = historyMeasurements(profile)
		}
	} else {
		s, err := filterFlags.buildSimulation(cmd)
		if err != nil {
			return err
		}
		if _, err := s.sim.Run(s.days); err != nil {
			return err
		}
		readings = s.sim.Readings()
		runID = s.sim.RunID()
		if filterFitOn == fitOnHistory {
			training = historyMeasurements(s.profile)
		}
	}

	data := models.Measurements(readings)
	if filterFitOn == fitOnSelf {
		training = data
	}

	f := rules.New(ruleSet...).WithLogger(log)
	if err := f.Fit(cmd.Context(), training); err != nil {
		return err
	}
	verdicts, err := f.Apply(cmd.Context(), data)
	if err != nil {
		return err
	}

	if filterMetrics != "" {
		m := metrics.New()
		for _, r := range readings {
			m.ObserveReading(r)
		}
		m.ObserveVerdicts(verdicts)
		if err := m.WriteTextfile(filterMetrics); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	report, err := output.NewFilterReport(runID, verdicts, models.GroundTruth(readings))
	if err != nil {
		return err
	}
	if !filterVerdicts {
		report.Verdicts = nil
	}

	log.Info("filter complete",
		zap.String("run_id", runID),
		zap.Int("samples", len(data)),
		zap.Int("training_samples", len(training)),
		zap.String("fit_on", filterFitOn),
	)

	w, err := newOutputWriter(cmd)
	if err != nil {
		return err
	}
	return w.Write(report)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
