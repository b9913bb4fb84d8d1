package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// StateTimeLayout is the recorder's last_changed format: naive wall clock
// with up to microsecond precision. The .999999 fraction accepts the
// variable digit counts the recorder actually writes.
const StateTimeLayout = "2006-01-02 15:04:05.999999"

// StateRow mirrors the columns of the recorder's states table that
// extraction touches. The schema is owned by Home Assistant; rows are
// transient and discarded once transformed.
type StateRow struct {
	Domain      string `db:"domain"`
	EntityID    string `db:"entity_id"`
	State       string `db:"state"`
	Attributes  string `db:"attributes"`
	LastChanged string `db:"last_changed"`
}

// StateAttributes is the subset of the recorder's attributes blob that
// extraction requires.
type StateAttributes struct {
	FriendlyName      string `json:"friendly_name"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
}

// TemperatureReading is a normalized sensor reading. It is a value object:
// two readings with equal fields are the same reading.
type TemperatureReading struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ParseStateTime parses a recorder last_changed string. The result is a
// wall-clock instant in UTC; see the package documentation for why the
// recorder's naive timestamps are pinned to UTC.
func ParseStateTime(s string) (time.Time, error) {
	ts, err := time.Parse(StateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return ts, nil
}

// ParseStateRow transforms a raw state row into a TemperatureReading with
// its value expressed in target units. The row is expected to have passed
// the sensor/temperature filter already; this only validates its payload.
func ParseStateRow(row StateRow, target Unit) (TemperatureReading, error) {
	var attrs StateAttributes
	if err := json.Unmarshal([]byte(row.Attributes), &attrs); err != nil {
		return TemperatureReading{}, fmt.Errorf("%w: entity %s: %v", ErrMalformedMetadata, row.EntityID, err)
	}
	if attrs.FriendlyName == "" || attrs.UnitOfMeasurement == "" {
		return TemperatureReading{}, fmt.Errorf("%w: entity %s: missing friendly_name or unit_of_measurement", ErrMalformedMetadata, row.EntityID)
	}

	ts, err := ParseStateTime(row.LastChanged)
	if err != nil {
		return TemperatureReading{}, fmt.Errorf("entity %s: %w", row.EntityID, err)
	}

	value, err := strconv.ParseFloat(row.State, 64)
	if err != nil {
		return TemperatureReading{}, fmt.Errorf("%w: entity %s: state %q", ErrMalformedValue, row.EntityID, row.State)
	}

	source, err := ParseUnit(attrs.UnitOfMeasurement)
	if err != nil {
		return TemperatureReading{}, fmt.Errorf("%w: entity %s: %q to %q", ErrUnsupportedConversion, row.EntityID, attrs.UnitOfMeasurement, target)
	}
	converted, err := convert(value, source, target)
	if err != nil {
		return TemperatureReading{}, fmt.Errorf("entity %s: %w", row.EntityID, err)
	}

	return TemperatureReading{
		Name:      attrs.FriendlyName,
		Timestamp: ts,
		Value:     converted,
	}, nil
}
