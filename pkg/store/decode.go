package store

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
)

// decodeReading maps a row keyed by column name onto a Reading. Column order
// and name case do not matter; unknown columns are ignored.
func decodeReading(row map[string]interface{}) (models.Reading, error) {
	byName := make(map[string]interface{}, len(row))
	for name, val := range row {
		if b, ok := val.([]byte); ok {
			val = string(b)
		}
		byName[strings.ToLower(name)] = val
	}

	var (
		r   models.Reading
		err error
	)
	for _, column := range models.Columns {
		val, ok := byName[strings.ToLower(column)]
		if !ok || val == nil {
			return models.Reading{}, fmt.Errorf("%w: column %s missing from result", ErrQuery, column)
		}
		switch column {
		case models.ColumnID:
			r.ID, err = cast.ToInt64E(val)
		case models.ColumnTime:
			r.Time, err = cast.ToInt64E(val)
		case models.ColumnProfileName:
			r.ProfileName, err = cast.ToStringE(val)
		case models.ColumnTemperature:
			r.Temperature, err = cast.ToFloat64E(val)
		case models.ColumnHumidity:
			r.Humidity, err = cast.ToFloat64E(val)
		case models.ColumnPressure:
			r.Pressure, err = cast.ToFloat64E(val)
		}
		if err != nil {
			return models.Reading{}, fmt.Errorf("%w: column %s: %v", ErrQuery, column, err)
		}
	}
	return r, nil
}
