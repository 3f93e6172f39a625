package cli

import (
	"github.com/spf13/cobra"

	"github.com/synheart/synheart-bpsim/internal/output"
)

var profileData dataFlags

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Summarize the patient profile learned from a diary",
	Long:  `Loads the historical diary and prints the mean SBP/DBP and the daily state probabilities the simulator samples from.`,
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

func init() {
	profileData.register(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	profileData.apply(cfg)

	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	w, err := newOutputWriter(cmd)
	if err != nil {
		return err
	}
	return w.Write(output.NewProfileReport(cfg.Data.Path, profile))
}
