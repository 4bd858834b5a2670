package models

import (
	"errors"
	"fmt"
)

// Column names of the readings table, in storage order
const (
	ColumnID          = "ID"
	ColumnTime        = "time"
	ColumnProfileName = "profile_name"
	ColumnTemperature = "temperature"
	ColumnHumidity    = "humidity"
	ColumnPressure    = "pressure"
)

// Columns lists the readings table columns in their fixed order
var Columns = []string{
	ColumnID,
	ColumnTime,
	ColumnProfileName,
	ColumnTemperature,
	ColumnHumidity,
	ColumnPressure,
}

// Reading represents one smart meter sample
type Reading struct {
	ID          int64   `json:"ID" db:"ID"`
	Time        int64   `json:"time" db:"time"` // unix seconds
	ProfileName string  `json:"profile_name" db:"profile_name"`
	Temperature float64 `json:"temperature" db:"temperature"`
	Humidity    float64 `json:"humidity" db:"humidity"`
	Pressure    float64 `json:"pressure" db:"pressure"`
}

// ErrIncompleteReading is returned by Validate when a field is unset
var ErrIncompleteReading = errors.New("incomplete reading")

// Validate checks that every field is populated before the reading is stored
func (r Reading) Validate() error {
	switch {
	case r.ID == 0:
		return fmt.Errorf("%w: missing %s", ErrIncompleteReading, ColumnID)
	case r.Time == 0:
		return fmt.Errorf("%w: missing %s", ErrIncompleteReading, ColumnTime)
	case r.ProfileName == "":
		return fmt.Errorf("%w: missing %s", ErrIncompleteReading, ColumnProfileName)
	case r.Temperature == 0:
		return fmt.Errorf("%w: missing %s", ErrIncompleteReading, ColumnTemperature)
	case r.Humidity == 0:
		return fmt.Errorf("%w: missing %s", ErrIncompleteReading, ColumnHumidity)
	case r.Pressure == 0:
		return fmt.Errorf("%w: missing %s", ErrIncompleteReading, ColumnPressure)
	}
	return nil
}

// Values returns the field values in column order
func (r Reading) Values() []interface{} {
	return []interface{}{r.ID, r.Time, r.ProfileName, r.Temperature, r.Humidity, r.Pressure}
}

// Summary is the aggregate computed by the reader
type Summary struct {
	Count              int     `json:"count"`
	AverageTemperature float64 `json:"averageTemperature"`
	Empty              bool    `json:"empty"`
}
