package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/synheart/synheart-bpsim/internal/encoding"
	"github.com/synheart/synheart-bpsim/internal/metrics"
	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/rules"
	"github.com/synheart/synheart-bpsim/internal/transport"
)

var (
	streamFlags    simFlags
	streamHost     string
	streamPort     int
	streamEncoding string
	streamTick     time.Duration
	streamForever  bool
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Simulate in real time and broadcast readings",
	Long: `Advances the simulator one day per tick and broadcasts every reading over
WebSocket (/bp/ws) and Server-Sent Events (/bp/sse). Prometheus metrics,
including live rule verdicts, are served on /metrics. Nothing is stored.`,
	Args: cobra.NoArgs,
	RunE: runStream,
}

func init() {
	streamFlags.register(streamCmd)
	streamCmd.Flags().StringVar(&streamHost, "host", "", "Host to bind to (default: config)")
	streamCmd.Flags().IntVar(&streamPort, "port", 0, "Port to listen on (default: config)")
	streamCmd.Flags().StringVar(&streamEncoding, "encoding", "", "Payload encoding: json|protobuf (default: config)")
	streamCmd.Flags().DurationVar(&streamTick, "tick", 0, "Wall-clock time per simulated day (default: config)")
	streamCmd.Flags().BoolVar(&streamForever, "forever", false, "Keep simulating until interrupted")
}

func runStream(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Stream.Host = streamHost
	}
	if flags.Changed("port") {
		cfg.Stream.Port = streamPort
	}
	if flags.Changed("encoding") {
		cfg.Stream.Encoding = streamEncoding
	}
	if flags.Changed("tick") {
		cfg.Stream.Tick = streamTick
	}

	s, err := streamFlags.buildSimulation(cmd)
	if err != nil {
		return err
	}

	// live verdicts use the default rules fitted on the diary
	ruleSet, err := rules.LookupAll(rules.DefaultNames)
	if err != nil {
		return err
	}
	filter := rules.New(ruleSet...).WithLogger(log)
	if err := filter.Fit(cmd.Context(), historyMeasurements(s.profile)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Info("received interrupt signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	m := metrics.New()
	encoder := encoding.NewEncoder(encoding.Format(cfg.Stream.Encoding))

	server := transport.NewServer(cfg.Stream.Host, cfg.Stream.Port, log)
	server.Mount("/bp/ws", transport.NewWebSocketHub(encoder, log))
	// SSE is a text protocol, so it always carries JSON
	server.Mount("/bp/sse", transport.NewSSEHub(encoding.NewJSONEncoder(), log))
	server.Handle("/metrics", m.Handler())

	readings := make(chan models.Reading, cfg.Stream.Buffer)
	dispatcher := transport.NewDispatcher(readings, cfg.Stream.Buffer, log)
	dispatcher.OnDrop(m.AddDropped)
	broadcast := dispatcher.Subscribe()

	g, gctx := errgroup.WithContext(ctx)

	s.sim.Observe(streamObserver(gctx, m, filter, readings))

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return err
		}
		// server stopped without error; end the run
		cancel()
		return nil
	})
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		err := server.BroadcastFromChannel(gctx, broadcast)
		// every reading has been sent once the channel drains
		cancel()
		return err
	})
	g.Go(func() error {
		defer close(readings)
		return runTicks(gctx, s, m, server)
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "Streaming BP readings\n\n")
	fmt.Fprintf(cmd.ErrOrStderr(), "Scenario:   %s\n", scenarioName(s))
	fmt.Fprintf(cmd.ErrOrStderr(), "WebSocket:  ws://%s:%d/bp/ws\n", cfg.Stream.Host, cfg.Stream.Port)
	fmt.Fprintf(cmd.ErrOrStderr(), "SSE:        http://%s:%d/bp/sse\n", cfg.Stream.Host, cfg.Stream.Port)
	fmt.Fprintf(cmd.ErrOrStderr(), "Metrics:    http://%s:%d/metrics\n", cfg.Stream.Host, cfg.Stream.Port)
	fmt.Fprintf(cmd.ErrOrStderr(), "Tick:       %s per day\n\n", cfg.Stream.Tick)

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	log.Info("stream stopped",
		zap.String("run_id", s.sim.RunID()),
		zap.Float64("simulated_hours", s.sim.Now()),
		zap.Int64("dropped", dispatcher.DroppedCount()),
	)
	return err
}

// streamObserver records metrics and live verdicts for each reading and hands
// it to the dispatcher. The hand-off gives up once ctx is done so a stopped
// stream never blocks the simulator.
func streamObserver(ctx context.Context, m *metrics.Metrics, filter *rules.Filter, readings chan<- models.Reading) func(models.Reading) {
	var history []models.Measurement
	return func(r models.Reading) {
		m.ObserveReading(r)
		history = append(history, r.Measurement)

		verdicts, err := filter.Apply(ctx, history)
		if err != nil {
			log.Warn("live filter failed", zap.Error(err))
		} else {
			last := len(history) - 1
			for i, name := range verdicts.Rules {
				m.ObserveVerdict(name, verdicts.Matrix[i][last])
			}
		}

		select {
		case readings <- r:
		case <-ctx.Done():
		}
	}
}

// runTicks advances the simulation one day per tick until the configured
// number of days has elapsed, or forever with --forever
func runTicks(ctx context.Context, s *simulation, m *metrics.Metrics, server *transport.Server) error {
	ticker := time.NewTicker(cfg.Stream.Tick)
	defer ticker.Stop()

	for day := 0; streamForever || day < s.days; day++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := s.sim.Advance(1); err != nil {
			return err
		}
		for name, n := range server.ClientCounts() {
			m.SetClients(name, n)
		}
	}

	log.Info("simulation finished",
		zap.String("run_id", s.sim.RunID()),
		zap.Int("days", s.days),
	)
	return nil
}

func scenarioName(s *simulation) string {
	if s.scenario == nil {
		return "(patient history)"
	}
	return s.scenario.Name
}
