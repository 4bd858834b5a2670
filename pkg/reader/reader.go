package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

// NoDataMessage is printed when there is nothing to summarise
const NoDataMessage = "No data to process."

// Reader fetches the latest readings and reports on them
type Reader struct {
	store store.ReadingStore
	limit int
	out   io.Writer
}

// New creates a reader that prints its report to out
func New(s store.ReadingStore, cfg config.ReaderConfig, out io.Writer) *Reader {
	return &Reader{store: s, limit: cfg.Limit, out: out}
}

// Limit returns the configured number of rows to fetch
func (r *Reader) Limit() int {
	return r.limit
}

// Recent returns up to n readings, newest first
func (r *Reader) Recent(ctx context.Context, n int) ([]models.Reading, error) {
	return r.store.RecentReadings(ctx, n)
}

// FetchRecent is Recent with the error reported and replaced by an empty result
func (r *Reader) FetchRecent(ctx context.Context, n int) []models.Reading {
	readings, err := r.Recent(ctx, n)
	if err != nil {
		logrus.Errorf("Error fetching data: %v", err)
		return []models.Reading{}
	}
	return readings
}

// Summarize reports the count and mean temperature followed by every reading
// as a JSON record. An empty input only reports that there is no data.
func (r *Reader) Summarize(readings []models.Reading) models.Summary {
	summary := Summarize(readings)
	if summary.Empty {
		fmt.Fprintln(r.out, NoDataMessage)
		return summary
	}

	fmt.Fprintf(r.out, "Consumed data: %d records\n", summary.Count)
	fmt.Fprintf(r.out, "Average temperature: %.2f\n", summary.AverageTemperature)

	enc := json.NewEncoder(r.out)
	for _, reading := range readings {
		if err := enc.Encode(reading); err != nil {
			logrus.Errorf("Error printing reading %d: %v", reading.ID, err)
		}
	}
	return summary
}

// Run fetches the configured number of readings and summarises them
func (r *Reader) Run(ctx context.Context) models.Summary {
	return r.Summarize(r.FetchRecent(ctx, r.limit))
}

// Summarize computes the count and mean temperature without printing
func Summarize(readings []models.Reading) models.Summary {
	if len(readings) == 0 {
		return models.Summary{Empty: true}
	}

	temps := make([]decimal.Decimal, len(readings))
	for i, reading := range readings {
		temps[i] = decimal.NewFromFloat(reading.Temperature)
	}
	mean := decimal.Avg(temps[0], temps[1:]...).Round(2)

	return models.Summary{
		Count:              len(readings),
		AverageTemperature: mean.InexactFloat64(),
	}
}
