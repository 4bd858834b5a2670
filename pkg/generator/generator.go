package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

// Value ranges of generated readings, inclusive
const (
	MinID          = 1000
	MaxID          = 9999
	MinTemperature = 15.0
	MaxTemperature = 35.0
	MinHumidity    = 30.0
	MaxHumidity    = 70.0
	MinPressure    = 900.0
	MaxPressure    = 1100.0
)

// Result counts what a run produced
type Result struct {
	RunID     string
	Attempted int
	Stored    int
	Failed    int
	StoredIDs []int64
}

// Generator produces synthetic readings and appends them to the store
type Generator struct {
	store       store.ReadingStore
	count       int
	interval    time.Duration
	profileName string
	rng         *rand.Rand
	now         func() time.Time
}

// Option customises a Generator
type Option func(*Generator)

// WithRand sets the random source
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a generator writing to s
func New(s store.ReadingStore, cfg config.GeneratorConfig, opts ...Option) *Generator {
	g := &Generator{
		store:       s,
		count:       cfg.Count,
		interval:    cfg.Interval,
		profileName: cfg.ProfileName,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateReading returns a random reading stamped with the current time
func (g *Generator) GenerateReading() models.Reading {
	return models.Reading{
		ID:          int64(MinID + g.rng.Intn(MaxID-MinID+1)),
		Time:        g.now().Unix(),
		ProfileName: g.profileName,
		Temperature: g.uniform(MinTemperature, MaxTemperature),
		Humidity:    g.uniform(MinHumidity, MaxHumidity),
		Pressure:    g.uniform(MinPressure, MaxPressure),
	}
}

// uniform draws from [lo, hi] rounded to 2 decimal places
func (g *Generator) uniform(lo, hi float64) float64 {
	return Round2(lo + g.rng.Float64()*(hi-lo))
}

// Round2 rounds v half away from zero to 2 decimal places
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Persist appends one reading to the store. The caller decides what to do
// with a failure; nothing is retried here.
func (g *Generator) Persist(ctx context.Context, reading models.Reading) error {
	if err := reading.Validate(); err != nil {
		return fmt.Errorf("refusing to store reading: %w", err)
	}
	return g.store.InsertReading(ctx, reading)
}

// Run generates and persists count readings, waiting interval after each.
// A failed insert is logged and the reading dropped; the loop carries on.
// Cancelling ctx stops the loop early.
func (g *Generator) Run(ctx context.Context) Result {
	result := Result{RunID: uuid.New().String()}
	log := logrus.WithField("run_id", result.RunID)

	log.Infof("Producing %d readings every %s", g.count, g.interval)

	for i := 0; i < g.count; i++ {
		if ctx.Err() != nil {
			log.Warnf("Generation cancelled after %d readings: %v", result.Attempted, ctx.Err())
			break
		}

		reading := g.GenerateReading()
		entry := log.WithFields(logrus.Fields{
			"id":          reading.ID,
			"time":        reading.Time,
			"temperature": reading.Temperature,
			"humidity":    reading.Humidity,
			"pressure":    reading.Pressure,
		})
		entry.Info("Producing reading")

		result.Attempted++
		if err := g.Persist(ctx, reading); err != nil {
			result.Failed++
			entry.Errorf("Error storing reading: %v", err)
		} else {
			result.Stored++
			result.StoredIDs = append(result.StoredIDs, reading.ID)
			entry.Info("Stored reading")
		}

		if err := sleep(ctx, g.interval); err != nil {
			log.Warnf("Generation cancelled while waiting: %v", err)
			break
		}
	}

	log.Infof("Generation finished: %d stored, %d failed", result.Stored, result.Failed)
	return result
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
