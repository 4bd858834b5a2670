package store

import (
	"context"
	"fmt"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
)

// ReadingStore is the shared table both programs talk through.
// This allows us to mock the store for testing.
type ReadingStore interface {
	Ping(ctx context.Context) error
	CreateTable(ctx context.Context) error
	InsertReading(ctx context.Context, reading models.Reading) error
	RecentReadings(ctx context.Context, limit int) ([]models.Reading, error)
	Close() error
}

// Ensure both backends implement ReadingStore
var (
	_ ReadingStore = (*SQLStore)(nil)
	_ ReadingStore = (*ProtonStore)(nil)
)

// Open connects to the backend selected by cfg.Driver and verifies the
// connection. Failures wrap ErrConnection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (ReadingStore, error) {
	var (
		s   ReadingStore
		err error
	)
	switch cfg.Driver {
	case config.DriverMySQL, config.DriverSQLite:
		s, err = OpenSQL(ctx, cfg)
	case config.DriverProton:
		s, err = OpenProton(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", ErrConnection, cfg.Driver)
	}
	if err != nil {
		// avoid handing back a typed nil inside the interface
		return nil, err
	}
	return s, nil
}
