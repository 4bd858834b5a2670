// Package storetest provides a testify mock of store.ReadingStore.
package storetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

// MockStore is a mock implementation of the ReadingStore interface
type MockStore struct {
	mock.Mock
}

// Ensure MockStore implements ReadingStore
var _ store.ReadingStore = (*MockStore)(nil)

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) CreateTable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) InsertReading(ctx context.Context, reading models.Reading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockStore) RecentReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reading), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
