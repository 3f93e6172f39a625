package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/output"
)

var simulateFlags simFlags

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate daily BP measurements for a patient",
	Long: `Runs the measurement simulator over the patient profile and prints one
reading per simulated day. Missing measurements are reported as -1/-1.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateFlags.register(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := simulateFlags.buildSimulation(cmd)
	if err != nil {
		return err
	}

	w, err := newOutputWriter(cmd)
	if err != nil {
		return err
	}

	if _, err := s.sim.Run(s.days); err != nil {
		return err
	}
	log.Info("simulation complete",
		zap.String("run_id", s.sim.RunID()),
		zap.Int64("seed", s.seed),
		zap.Int("days", s.days),
	)

	return w.Write(output.Readings(s.sim.Readings()))
}
