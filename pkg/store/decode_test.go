package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
)

func TestDecodeReading(t *testing.T) {
	want := models.Reading{
		ID:          1234,
		Time:        1700000000,
		ProfileName: "fake_smart_meter",
		Temperature: 22.5,
		Humidity:    40.01,
		Pressure:    999.99,
	}

	tests := []struct {
		name string
		row  map[string]interface{}
	}{
		{
			name: "native types",
			row: map[string]interface{}{
				"ID": int64(1234), "time": int64(1700000000), "profile_name": "fake_smart_meter",
				"temperature": 22.5, "humidity": 40.01, "pressure": 999.99,
			},
		},
		{
			name: "text protocol bytes",
			row: map[string]interface{}{
				"ID": []byte("1234"), "time": []byte("1700000000"), "profile_name": []byte("fake_smart_meter"),
				"temperature": []byte("22.5"), "humidity": []byte("40.01"), "pressure": []byte("999.99"),
			},
		},
		{
			name: "different case and extra column",
			row: map[string]interface{}{
				"id": int32(1234), "TIME": uint32(1700000000), "Profile_Name": "fake_smart_meter",
				"temperature": float32(22.5), "humidity": 40.01, "pressure": 999.99, "_tp_time": "ignored",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeReading(tt.row)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeReadingErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		_, err := decodeReading(map[string]interface{}{"ID": 1, "time": 2})
		assert.ErrorIs(t, err, ErrQuery)
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := decodeReading(map[string]interface{}{
			"ID": "not-a-number", "time": 1, "profile_name": "p",
			"temperature": 1.0, "humidity": 1.0, "pressure": 1.0,
		})
		assert.ErrorIs(t, err, ErrQuery)
	})
}
