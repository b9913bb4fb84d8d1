package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStateTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"six fraction digits", "2023-01-14 07:30:00.124309", time.Date(2023, 1, 14, 7, 30, 0, 124309000, time.UTC), false},
		{"fewer fraction digits", "2023-01-14 07:30:00.12", time.Date(2023, 1, 14, 7, 30, 0, 120000000, time.UTC), false},
		{"no fraction", "2023-01-14 07:30:00", time.Date(2023, 1, 14, 7, 30, 0, 0, time.UTC), false},
		{"iso T separator", "2023-01-14T07:30:00.124309", time.Time{}, true},
		{"date only", "2023-01-14", time.Time{}, true},
		{"empty", "", time.Time{}, true},
		{"garbage", "last tuesday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStateTime(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseStateRow(t *testing.T) {
	row := StateRow{
		Domain:      "sensor",
		EntityID:    "sensor.living_room_temperature",
		State:       "68",
		Attributes:  `{"friendly_name":"Living Room","unit_of_measurement":"°F"}`,
		LastChanged: "2023-01-14 07:30:00.124309",
	}

	t.Run("fahrenheit row to celsius", func(t *testing.T) {
		reading, err := ParseStateRow(row, Celsius)
		require.NoError(t, err)
		assert.Equal(t, "Living Room", reading.Name)
		assert.InDelta(t, 20, reading.Value, 1e-9)
		assert.Equal(t, time.Date(2023, 1, 14, 7, 30, 0, 124309000, time.UTC), reading.Timestamp)
	})

	t.Run("same unit is identity", func(t *testing.T) {
		reading, err := ParseStateRow(row, Fahrenheit)
		require.NoError(t, err)
		assert.Equal(t, 68.0, reading.Value)
	})

	t.Run("celsius row to fahrenheit", func(t *testing.T) {
		r := row
		r.State = "100"
		r.Attributes = `{"friendly_name":"Boiler","unit_of_measurement":"°C"}`
		reading, err := ParseStateRow(r, Fahrenheit)
		require.NoError(t, err)
		assert.InDelta(t, 212, reading.Value, 1e-9)
	})

	t.Run("invalid attributes json", func(t *testing.T) {
		r := row
		r.Attributes = `{not json`
		_, err := ParseStateRow(r, Celsius)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})

	t.Run("missing friendly_name", func(t *testing.T) {
		r := row
		r.Attributes = `{"unit_of_measurement":"°C"}`
		_, err := ParseStateRow(r, Celsius)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})

	t.Run("missing unit_of_measurement", func(t *testing.T) {
		r := row
		r.Attributes = `{"friendly_name":"Living Room"}`
		_, err := ParseStateRow(r, Celsius)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		r := row
		r.LastChanged = "not a timestamp"
		_, err := ParseStateRow(r, Celsius)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedTimestamp)
	})

	t.Run("non-numeric state", func(t *testing.T) {
		r := row
		r.State = "unavailable"
		_, err := ParseStateRow(r, Celsius)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedValue)
	})

	t.Run("unrecognized source unit", func(t *testing.T) {
		r := row
		r.Attributes = `{"friendly_name":"Outdoor","unit_of_measurement":"K"}`
		_, err := ParseStateRow(r, Celsius)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedConversion)
	})
}
