package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <scenario>",
	Short: "Describe a scenario in detail",
	Long:  `Shows detailed information about a scenario including its phases and state probability overrides.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	registry, err := loadScenarios()
	if err != nil {
		return err
	}

	scen, err := registry.Get(args[0])
	if err != nil {
		return fmt.Errorf("scenario not found: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario: %s\n", scen.Name)
	fmt.Fprintf(out, "Description: %s\n", scen.Description)
	fmt.Fprintf(out, "Days: %d\n", scen.TotalDays())

	transition := scen.Transition
	if transition == "" {
		transition = "(config)"
	}
	fmt.Fprintf(out, "Transition: %s\n", transition)
	if scen.Seed != nil {
		fmt.Fprintf(out, "Seed: %d\n", *scen.Seed)
	}
	if scen.LegacyDiffHalving != nil {
		fmt.Fprintf(out, "Legacy diff halving: %v\n", *scen.LegacyDiffHalving)
	}

	if len(scen.Phases) > 0 {
		fmt.Fprintln(out, "\nPhases:")
		start := 0
		for i, phase := range scen.Phases {
			span := fmt.Sprintf("days %d-%d", start, start+phase.Days-1)
			if phase.Days == 0 {
				span = fmt.Sprintf("days %d-", start)
			}
			fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, phase.Name, span)

			if p := phase.Probabilities; p != nil {
				fmt.Fprintf(out, "     normal=%.2f bad=%.2f missing=%.2f\n", p.Normal, p.Bad, p.Missing)
			} else {
				fmt.Fprintln(out, "     patient history probabilities")
			}
			start += phase.Days
		}
	}

	fmt.Fprintln(out)
	return nil
}
