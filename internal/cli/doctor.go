package cli

import (
	"fmt"
	"net"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/synheart/synheart-bpsim/internal/config"
	"github.com/synheart/synheart-bpsim/internal/history"
)

var doctorData dataFlags

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, data source and stream port",
	Long:  `Validates the configuration, checks the historical diary can be loaded and the stream port is free, and prints connection examples.`,
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorData.register(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	doctorData.apply(cfg)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "🏥 bpsim Environment Check")
	fmt.Fprintf(out, "Go Version:        %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch:           %s/%s\n\n", runtime.GOOS, runtime.GOARCH)

	if path := globalOpts.ConfigPath; path != "" {
		fmt.Fprintf(out, "✅ Config loaded: %s\n", path)
	} else if path := config.Find(); path != "" {
		fmt.Fprintf(out, "✅ Config loaded: %s\n", path)
	} else {
		fmt.Fprintln(out, "ℹ️  No config file, using defaults")
	}

	registry, err := loadScenarios()
	if err != nil {
		fmt.Fprintf(out, "❌ Scenarios: %v\n", err)
	} else {
		fmt.Fprintf(out, "✅ Found %d scenarios: %v\n", len(registry.List()), registry.List())
	}

	ok := true
	if cfg.Data.Path == "" {
		fmt.Fprintln(out, "⚠️  No data source configured (set data.path, BPSIM_DATA_PATH or --data)")
	} else if profile, err := loadProfile(cfg); err != nil {
		ok = false
		fmt.Fprintf(out, "❌ Data source %s: %v\n", cfg.Data.Path, err)
	} else {
		fmt.Fprintf(out, "✅ Data source %s (%s): %d rows, mean %.0f/%.0f mmHg\n",
			cfg.Data.Path, driverName(cfg.Data.Source), len(profile.SBP()), profile.MeanSBP(), profile.MeanDBP())
	}

	if isPortAvailable(cfg.Stream.Host, cfg.Stream.Port) {
		fmt.Fprintf(out, "✅ Stream port %d is available\n\n", cfg.Stream.Port)
	} else {
		fmt.Fprintf(out, "⚠️  Stream port %d is in use\n", cfg.Stream.Port)
		fmt.Fprintf(out, "   Use 'bpsim stream --port' to pick a different port\n\n")
	}

	fmt.Fprintln(out, "📡 Connection Examples:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "JavaScript/Node.js:")
	fmt.Fprintf(out, "  const ws = new WebSocket('ws://localhost:%d/bp/ws');\n", cfg.Stream.Port)
	fmt.Fprintln(out, "  ws.onmessage = (msg) => console.log(JSON.parse(msg.data));")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "curl (SSE):")
	fmt.Fprintf(out, "  curl -N http://localhost:%d/bp/sse\n", cfg.Stream.Port)
	fmt.Fprintln(out)

	if !ok {
		return fmt.Errorf("environment check failed")
	}
	fmt.Fprintln(out, "✅ Environment check complete")
	return nil
}

func driverName(src history.Source) string {
	if src.Driver != "" {
		return string(src.Driver)
	}
	return "by extension"
}

func isPortAvailable(host string, port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}
