package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/patient"
	"github.com/synheart/synheart-bpsim/internal/scenario"
	"github.com/synheart/synheart-bpsim/internal/stats"
)

const hoursPerDay = 24

// Rand is the subset of *rand.Rand the simulator draws from
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Config holds simulator configuration
type Config struct {
	TriggerInterval   float64 // hours between measurement triggers
	ProcessingLatency float64 // hours between a trigger and the recorded measurement
	LegacyDiffHalving bool    // halve the bad-state SBP/DBP gap regardless of deviation sign
}

// DefaultConfig returns the standard daily measurement schedule
func DefaultConfig() Config {
	return Config{
		TriggerInterval:   24,
		ProcessingLatency: 11,
		LegacyDiffHalving: true,
	}
}

// Simulator produces synthetic BP measurements for a patient by sampling
// state-conditioned empirical distributions on a simulated daily schedule
type Simulator struct {
	config  Config
	profile *patient.Profile
	engine  *scenario.Engine
	rng     Rand
	logger  *zap.Logger

	sbpDist  *stats.Distribution
	diffDist *stats.Distribution
	sbpStd   float64

	clock           *clock
	takeMeasurement *signal
	observers       []func(models.Reading)

	runID    string
	runStart float64 // clock hour the current run began at
	sequence int64
	readings []models.Reading
}

// Option configures a Simulator
type Option func(*Simulator)

// WithConfig replaces the default schedule and sampling configuration
func WithConfig(cfg Config) Option {
	return func(s *Simulator) { s.config = cfg }
}

// WithRand sets the random source
func WithRand(rng Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// WithSeed seeds a private random source
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithScenario applies scenario phase overrides to state transitions
func WithScenario(engine *scenario.Engine) Option {
	return func(s *Simulator) { s.engine = engine }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a simulator for profile. The profile is reset to its initial
// state. It fails when the historical series are too short to fit the
// sampling distributions.
func New(profile *patient.Profile, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		config:  DefaultConfig(),
		profile: profile,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.config.TriggerInterval <= 0 {
		return nil, fmt.Errorf("trigger interval must be positive, got %v", s.config.TriggerInterval)
	}
	if s.config.ProcessingLatency < 0 {
		return nil, fmt.Errorf("processing latency must not be negative, got %v", s.config.ProcessingLatency)
	}

	if err := s.fit(); err != nil {
		return nil, err
	}

	profile.Reset()
	s.clock = &clock{}
	s.takeMeasurement = newSignal(s.clock)
	s.start()
	return s, nil
}

// fit builds the sampling distributions from the historical series
func (s *Simulator) fit() error {
	sbp := s.profile.SBP()
	dbp := s.profile.DBP()

	sbpValues := sbp.Present()
	if len(sbpValues) < 2 {
		return &models.InsufficientDataError{Series: "historical sbp", Have: len(sbpValues), Need: 2}
	}
	if n := len(dbp.Present()); n < 2 {
		return &models.InsufficientDataError{Series: "historical dbp", Have: n, Need: 2}
	}

	diffs := make([]float64, 0, len(sbp))
	for i := 0; i < len(sbp) && i < len(dbp); i++ {
		if sbp[i].Valid && dbp[i].Valid {
			diffs = append(diffs, sbp[i].Float-dbp[i].Float)
		}
	}
	if len(diffs) < 2 {
		return &models.InsufficientDataError{Series: "historical sbp-dbp pairs", Have: len(diffs), Need: 2}
	}

	var err error
	if s.sbpDist, err = stats.NewDistribution(sbpValues); err != nil {
		return err
	}
	if s.diffDist, err = stats.NewDistribution(diffs); err != nil {
		return err
	}
	s.sbpStd = stats.StdDev(sbpValues)
	return nil
}

// start registers the two processes. The measurement process subscribes to
// the trigger before the trigger process first runs, so the trigger at hour
// zero already produces a measurement.
func (s *Simulator) start() {
	s.takeMeasurement.wait(s.onTrigger)
	s.clock.schedule(0, s.trigger)
}

// trigger process: signal, reset, sleep
func (s *Simulator) trigger() {
	s.takeMeasurement.fire()
	s.clock.schedule(s.config.TriggerInterval, s.trigger)
}

// measurement process, woken by a trigger
func (s *Simulator) onTrigger() {
	s.clock.schedule(s.config.ProcessingLatency, s.measure)
}

func (s *Simulator) measure() {
	now := s.clock.Now()

	var state models.State
	// scenario phases count from the start of the run
	if probs := s.engine.ProbabilitiesAt(now - s.runStart); probs != nil {
		state = s.profile.TransitionWith(s.rng, *probs)
	} else {
		state = s.profile.Transition(s.rng)
	}

	m := s.sample(state)
	s.sequence++
	reading := models.NewReading(s.runID, s.sequence, now, state, m)
	s.readings = append(s.readings, reading)

	s.logger.Debug("measurement recorded",
		zap.Float64("hour", now),
		zap.String("state", string(state)),
		zap.Int("sbp", m.SBP),
		zap.Int("dbp", m.DBP),
	)

	// measurement-done
	for _, observe := range s.observers {
		observe(reading)
	}

	s.takeMeasurement.wait(s.onTrigger)
}

// Observe registers fn to be called after every recorded measurement
func (s *Simulator) Observe(fn func(models.Reading)) {
	s.observers = append(s.observers, fn)
}

// Run clears the output log and advances the simulation by days, returning
// the measurements recorded in chronological order
func (s *Simulator) Run(days int) ([]models.Measurement, error) {
	if days <= 0 {
		return nil, fmt.Errorf("duration must be a positive number of days, got %d", days)
	}

	s.readings = make([]models.Reading, 0, days)
	s.runID = uuid.New().String()
	s.runStart = s.clock.Now()

	s.logger.Info("simulation started",
		zap.String("run_id", s.runID),
		zap.Int("days", days),
		zap.Float64("from_hour", s.clock.Now()),
		zap.String("initial_state", string(s.profile.CurrentState())),
	)

	events := s.advance(days)

	s.logger.Info("simulation finished",
		zap.String("run_id", s.runID),
		zap.Int("events", events),
		zap.Int("measurements", len(s.readings)),
	)

	return models.Measurements(s.readings), nil
}

// Advance continues the current run by days, keeping its identifier and
// appending to its log. It starts a run when none has been started. The
// readings recorded during this call are returned.
func (s *Simulator) Advance(days int) ([]models.Reading, error) {
	if days <= 0 {
		return nil, fmt.Errorf("duration must be a positive number of days, got %d", days)
	}
	if s.runID == "" {
		s.runID = uuid.New().String()
		s.runStart = s.clock.Now()
	}

	from := len(s.readings)
	s.advance(days)

	out := make([]models.Reading, len(s.readings)-from)
	copy(out, s.readings[from:])
	return out, nil
}

func (s *Simulator) advance(days int) int {
	until := s.clock.Now() + float64(days*hoursPerDay)
	return s.clock.runUntil(until)
}

// Readings returns the full log of the last run
func (s *Simulator) Readings() []models.Reading {
	out := make([]models.Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// RunID returns the identifier of the last run
func (s *Simulator) RunID() string {
	return s.runID
}

// Now returns the current simulated hour
func (s *Simulator) Now() float64 {
	return s.clock.Now()
}
