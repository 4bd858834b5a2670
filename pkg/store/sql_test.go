package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
)

// openSQLite opens a fresh SQLite store with the readings table created
func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "readings.db"),
		Table:  "SmartMeter",
	}
	s, err := OpenSQL(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateTable(context.Background()))
	return s
}

func reading(id, ts int64, temp float64) models.Reading {
	return models.Reading{
		ID:          id,
		Time:        ts,
		ProfileName: "fake_smart_meter",
		Temperature: temp,
		Humidity:    50.5,
		Pressure:    1000.25,
	}
}

func TestSQLStoreRecentReadings(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  []models.Reading
		limit   int
		wantIDs []int64
	}{
		{
			name:    "empty table",
			limit:   5,
			wantIDs: []int64{},
		},
		{
			name:    "fewer rows than limit",
			stored:  []models.Reading{reading(1001, 100, 20), reading(1002, 300, 21), reading(1003, 200, 22)},
			limit:   5,
			wantIDs: []int64{1002, 1003, 1001},
		},
		{
			name: "more rows than limit",
			stored: []models.Reading{
				reading(2001, 1, 20), reading(2002, 2, 20), reading(2003, 3, 20),
				reading(2004, 4, 20), reading(2005, 5, 20), reading(2006, 6, 20), reading(2007, 7, 20),
			},
			limit:   5,
			wantIDs: []int64{2007, 2006, 2005, 2004, 2003},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSQLite(t)
			for _, r := range tt.stored {
				require.NoError(t, s.InsertReading(ctx, r))
			}

			got, err := s.RecentReadings(ctx, tt.limit)
			require.NoError(t, err)

			ids := make([]int64, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	want := reading(4321, 1700000000, 23.45)
	require.NoError(t, s.InsertReading(ctx, want))

	got, err := s.RecentReadings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestSQLStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.InsertReading(ctx, reading(1500, 10, 20)))
	err := s.InsertReading(ctx, reading(1500, 11, 21))
	assert.ErrorIs(t, err, ErrQuery)

	got, err := s.RecentReadings(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLStoreMissingTable(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "empty.db"),
		Table:  "SmartMeter",
	}
	s, err := OpenSQL(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.RecentReadings(ctx, 5)
	assert.ErrorIs(t, err, ErrQuery)

	err = s.InsertReading(ctx, reading(1000, 1, 20))
	assert.ErrorIs(t, err, ErrQuery)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrConnection)
}
