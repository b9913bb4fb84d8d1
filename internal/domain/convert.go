package domain

import (
	"fmt"
	"strings"
)

// Unit is a recognized temperature scale.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit resolves a unit name to its canonical Unit. Matching is
// case-insensitive and accepts the canonical names, the degree symbols the
// recorder stores in attribute blobs, and the bare letters.
func ParseUnit(name string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "celsius", "°c", "c":
		return Celsius, nil
	case "fahrenheit", "°f", "f":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedUnit, name)
	}
}

// Convert converts value between two named temperature scales. Equal units
// are an exact identity. An unrecognized name on either side fails with
// ErrUnsupportedConversion naming both units.
func Convert(value float64, fromUnit, toUnit string) (float64, error) {
	from, err := ParseUnit(fromUnit)
	if err != nil {
		return 0, fmt.Errorf("%w: %q to %q", ErrUnsupportedConversion, fromUnit, toUnit)
	}
	to, err := ParseUnit(toUnit)
	if err != nil {
		return 0, fmt.Errorf("%w: %q to %q", ErrUnsupportedConversion, fromUnit, toUnit)
	}
	return convert(value, from, to)
}

func convert(value float64, from, to Unit) (float64, error) {
	switch {
	case from == to:
		return value, nil
	case from == Celsius && to == Fahrenheit:
		return value*9/5 + 32, nil
	case from == Fahrenheit && to == Celsius:
		return (value - 32) * 5 / 9, nil
	default:
		return 0, fmt.Errorf("%w: %q to %q", ErrUnsupportedConversion, from, to)
	}
}
