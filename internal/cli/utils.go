package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/config"
	"github.com/synheart/synheart-bpsim/internal/history"
	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/output"
	"github.com/synheart/synheart-bpsim/internal/patient"
	"github.com/synheart/synheart-bpsim/internal/scenario"
	"github.com/synheart/synheart-bpsim/internal/simulator"
)

func getScenarioDir() string {
	// Try current directory first
	if _, err := os.Stat("scenarios"); err == nil {
		return "scenarios"
	}

	// Try relative to executable
	exe, err := os.Executable()
	if err == nil {
		dir := filepath.Join(filepath.Dir(exe), "scenarios")
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}

	return ""
}

// loadScenarios returns the built-in scenarios plus any found in a local
// scenarios directory, which take precedence
func loadScenarios() (*scenario.Registry, error) {
	registry, err := scenario.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in scenarios: %w", err)
	}
	if dir := getScenarioDir(); dir != "" {
		if err := registry.LoadFromDir(dir); err != nil {
			return nil, fmt.Errorf("failed to load scenarios from %s: %w", dir, err)
		}
	}
	return registry, nil
}

// dataFlags locate the historical diary
type dataFlags struct {
	path   string
	driver string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "data", "", "Historical diary (tsv, csv, xlsx or sqlite)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "Data driver: delimited|xlsx|sqlite (default: by extension)")
}

func (f *dataFlags) apply(c *config.Config) {
	if f.path != "" {
		c.Data.Path = f.path
	}
	if f.driver != "" {
		c.Data.Driver = history.Driver(f.driver)
	}
}

// loadProfile opens the configured diary and derives the patient profile
func loadProfile(c *config.Config) (*patient.Profile, error) {
	provider, err := history.Open(c.Data.Source)
	if err != nil {
		return nil, err
	}

	policy, err := patient.PolicyByName(c.Simulation.Transition)
	if err != nil {
		return nil, err
	}

	profile, err := patient.NewProfile(provider, c.Data.Columns,
		patient.WithPolicy(policy),
		patient.WithThresholds(c.Data.Thresholds.Thresholds()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient profile from %s: %w", c.Data.Path, err)
	}

	log.Info("patient profile loaded", append([]zap.Field{zap.String("source", c.Data.Path)}, profile.Summary()...)...)
	return profile, nil
}

// historyMeasurements pairs the diary columns row by row, marking absent
// values with the missing sentinel
func historyMeasurements(p *patient.Profile) []models.Measurement {
	sbp, dbp := p.SBP(), p.DBP()
	n := min(len(sbp), len(dbp))

	out := make([]models.Measurement, n)
	for i := 0; i < n; i++ {
		m := models.MissingMeasurement
		if sbp[i].Valid {
			m.SBP = int(sbp[i].Float)
		}
		if dbp[i].Valid {
			m.DBP = int(dbp[i].Float)
		}
		out[i] = m
	}
	return out
}

// simFlags are shared by every command that runs the simulator
type simFlags struct {
	dataFlags
	days       int
	seed       int64
	scenario   string
	transition string
	legacy     bool
}

func (f *simFlags) register(cmd *cobra.Command) {
	f.dataFlags.register(cmd)
	cmd.Flags().IntVarP(&f.days, "days", "d", 0, "Days to simulate (default: scenario or config)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed for deterministic output (default: config or time)")
	cmd.Flags().StringVarP(&f.scenario, "scenario", "s", "", "Scenario to run")
	cmd.Flags().StringVar(&f.transition, "transition", "", "State transition policy: two-sided|categorical")
	cmd.Flags().BoolVar(&f.legacy, "legacy-diff-halving", true, "Always halve the SBP/DBP gap of bad readings")
}

// simulation is a configured simulator ready to run
type simulation struct {
	sim      *simulator.Simulator
	profile  *patient.Profile
	scenario *scenario.Scenario
	days     int
	seed     int64
}

// buildSimulation resolves flags over scenario over config, in that order
func (f *simFlags) buildSimulation(cmd *cobra.Command) (*simulation, error) {
	f.dataFlags.apply(cfg)

	var scen *scenario.Scenario
	name := f.scenario
	if name == "" {
		name = cfg.Simulation.Scenario
	}
	if name != "" {
		registry, err := loadScenarios()
		if err != nil {
			return nil, err
		}
		if scen, err = registry.Get(name); err != nil {
			return nil, err
		}
		if scen.TotalDays() > 0 {
			cfg.Simulation.Days = scen.TotalDays()
		}
		if scen.Seed != nil && cfg.Simulation.Seed == nil {
			cfg.Simulation.Seed = scen.Seed
		}
		if scen.Transition != "" {
			cfg.Simulation.Transition = scen.Transition
		}
		if scen.LegacyDiffHalving != nil {
			cfg.Simulation.LegacyDiffHalving = *scen.LegacyDiffHalving
		}
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.Simulation.Days = f.days
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = &f.seed
	}
	if flags.Changed("transition") {
		cfg.Simulation.Transition = f.transition
	}
	if flags.Changed("legacy-diff-halving") {
		cfg.Simulation.LegacyDiffHalving = f.legacy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Simulation.Seed != nil {
		seed = *cfg.Simulation.Seed
	}

	profile, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}

	opts := []simulator.Option{
		simulator.WithConfig(cfg.SimulatorConfig()),
		simulator.WithSeed(seed),
		simulator.WithLogger(log),
	}
	if scen != nil {
		opts = append(opts, simulator.WithScenario(scenario.NewEngine(scen)))
	}

	sim, err := simulator.New(profile, opts...)
	if err != nil {
		return nil, err
	}

	return &simulation{
		sim:      sim,
		profile:  profile,
		scenario: scen,
		days:     cfg.Simulation.Days,
		seed:     seed,
	}, nil
}

func newOutputWriter(cmd *cobra.Command) (*output.Writer, error) {
	format, err := output.ParseFormat(globalOpts.Format)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(cmd.OutOrStdout(), format), nil
}
