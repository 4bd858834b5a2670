package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store/storetest"
)

func readingWithTemp(id int64, temp float64) models.Reading {
	return models.Reading{
		ID:          id,
		Time:        1700000000 + id,
		ProfileName: "fake_smart_meter",
		Temperature: temp,
		Humidity:    55.5,
		Pressure:    1001.01,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	var out bytes.Buffer
	r := New(nil, config.ReaderConfig{Limit: 5}, &out)

	summary := r.Summarize([]models.Reading{})

	assert.True(t, summary.Empty)
	assert.Zero(t, summary.Count)
	assert.Zero(t, summary.AverageTemperature)
	assert.Equal(t, NoDataMessage+"\n", out.String())
}

func TestSummarizeMean(t *testing.T) {
	tests := []struct {
		name  string
		temps []float64
		want  float64
		line  string
	}{
		{name: "three readings", temps: []float64{20.00, 22.00, 24.00}, want: 22.00, line: "Average temperature: 22.00"},
		{name: "single reading", temps: []float64{31.37}, want: 31.37, line: "Average temperature: 31.37"},
		{name: "rounded mean", temps: []float64{15.01, 15.02, 15.02}, want: 15.02, line: "Average temperature: 15.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings := make([]models.Reading, len(tt.temps))
			for i, temp := range tt.temps {
				readings[i] = readingWithTemp(int64(1000+i), temp)
			}

			var out bytes.Buffer
			summary := New(nil, config.ReaderConfig{Limit: 5}, &out).Summarize(readings)

			assert.False(t, summary.Empty)
			assert.Equal(t, len(tt.temps), summary.Count)
			assert.Equal(t, tt.want, summary.AverageTemperature)
			assert.Contains(t, out.String(), tt.line)
		})
	}
}

func TestSummarizePrintsRecords(t *testing.T) {
	readings := []models.Reading{readingWithTemp(1001, 20), readingWithTemp(1002, 22), readingWithTemp(1003, 24)}

	var out bytes.Buffer
	New(nil, config.ReaderConfig{Limit: 5}, &out).Summarize(readings)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Consumed data: 3 records", lines[0])
	assert.Equal(t, "Average temperature: 22.00", lines[1])

	for i, line := range lines[2:] {
		var decoded models.Reading
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		assert.Equal(t, readings[i], decoded)
	}
	assert.True(t, strings.HasPrefix(lines[2], `{"ID":1001,"time":`), "records keep the column order")
}

func TestFetchRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns store rows", func(t *testing.T) {
		mockStore := new(storetest.MockStore)
		rows := []models.Reading{readingWithTemp(1002, 21), readingWithTemp(1001, 20)}
		mockStore.On("RecentReadings", mock.Anything, 5).Return(rows, nil)

		got := New(mockStore, config.ReaderConfig{Limit: 5}, &bytes.Buffer{}).FetchRecent(ctx, 5)

		assert.Equal(t, rows, got)
		mockStore.AssertExpectations(t)
	})

	t.Run("error yields empty result", func(t *testing.T) {
		mockStore := new(storetest.MockStore)
		mockStore.On("RecentReadings", mock.Anything, 5).Return(nil, store.ErrQuery)

		got := New(mockStore, config.ReaderConfig{Limit: 5}, &bytes.Buffer{}).FetchRecent(ctx, 5)

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRun(t *testing.T) {
	t.Run("fetch error reports no data", func(t *testing.T) {
		mockStore := new(storetest.MockStore)
		mockStore.On("RecentReadings", mock.Anything, 5).Return(nil, store.ErrQuery)

		var out bytes.Buffer
		summary := New(mockStore, config.ReaderConfig{Limit: 5}, &out).Run(context.Background())

		assert.True(t, summary.Empty)
		assert.Equal(t, NoDataMessage+"\n", out.String())
	})

	t.Run("uses configured limit", func(t *testing.T) {
		mockStore := new(storetest.MockStore)
		mockStore.On("RecentReadings", mock.Anything, 3).
			Return([]models.Reading{readingWithTemp(1001, 20), readingWithTemp(1002, 24)}, nil)

		var out bytes.Buffer
		summary := New(mockStore, config.ReaderConfig{Limit: 3}, &out).Run(context.Background())

		assert.Equal(t, 2, summary.Count)
		assert.Equal(t, 22.0, summary.AverageTemperature)
		mockStore.AssertExpectations(t)
	})
}
