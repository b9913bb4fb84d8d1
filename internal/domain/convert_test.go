package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Unit
		wantErr bool
	}{
		{"canonical celsius", "celsius", Celsius, false},
		{"canonical fahrenheit", "fahrenheit", Fahrenheit, false},
		{"mixed case", "Celsius", Celsius, false},
		{"upper case", "FAHRENHEIT", Fahrenheit, false},
		{"recorder symbol celsius", "°C", Celsius, false},
		{"recorder symbol fahrenheit", "°F", Fahrenheit, false},
		{"bare letter", "c", Celsius, false},
		{"surrounding whitespace", " °C ", Celsius, false},
		{"kelvin", "kelvin", "", true},
		{"empty", "", "", true},
		{"garbage", "degrees", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnit(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedUnit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert(t *testing.T) {
	t.Run("identity is exact", func(t *testing.T) {
		for _, v := range []float64{-40, 0, 0.1, 21.437, 100} {
			got, err := Convert(v, "celsius", "celsius")
			require.NoError(t, err)
			assert.Equal(t, v, got)

			got, err = Convert(v, "fahrenheit", "fahrenheit")
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("known points", func(t *testing.T) {
		tests := []struct {
			value    float64
			from, to string
			want     float64
		}{
			{0, "celsius", "fahrenheit", 32},
			{100, "celsius", "fahrenheit", 212},
			{32, "fahrenheit", "celsius", 0},
			{212, "fahrenheit", "celsius", 100},
			{-40, "celsius", "fahrenheit", -40},
		}
		for _, tt := range tests {
			got, err := Convert(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		for _, v := range []float64{-273.15, -17.78, 0, 18.5, 36.6, 451} {
			f, err := Convert(v, "celsius", "fahrenheit")
			require.NoError(t, err)
			back, err := Convert(f, "fahrenheit", "celsius")
			require.NoError(t, err)
			assert.InDelta(t, v, back, 1e-9)
		}
	})

	t.Run("symbol aliases", func(t *testing.T) {
		got, err := Convert(68, "°F", "°C")
		require.NoError(t, err)
		assert.InDelta(t, 20, got, 1e-9)
	})

	t.Run("unrecognized target", func(t *testing.T) {
		_, err := Convert(20, "celsius", "kelvin")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedConversion)
		assert.Contains(t, err.Error(), "celsius")
		assert.Contains(t, err.Error(), "kelvin")
	})

	t.Run("unrecognized source", func(t *testing.T) {
		_, err := Convert(293, "kelvin", "celsius")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedConversion)
	})
}
