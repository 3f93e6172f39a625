package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List and inspect simulation scenarios",
	Long:  `Commands for the built-in scenarios and any defined in a local scenarios/ directory.`,
}

var listScenariosCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenarios",
	Long:  `Lists all available scenarios with their descriptions.`,
	Args:  cobra.NoArgs,
	RunE:  runListScenarios,
}

func init() {
	scenariosCmd.AddCommand(listScenariosCmd)
	scenariosCmd.AddCommand(describeCmd)
}

func runListScenarios(cmd *cobra.Command, args []string) error {
	registry, err := loadScenarios()
	if err != nil {
		return err
	}

	scenarios := registry.ListWithDescriptions()
	if len(scenarios) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found")
		return nil
	}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available scenarios:")
	fmt.Fprintln(out)
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %s\n", name, scenarios[name])
	}
	fmt.Fprintln(out)

	return nil
}
