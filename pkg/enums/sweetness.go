package enums

import "fmt"

// Sweetness is the sugar level a drink is prepared with, in percent.
type Sweetness string

const (
	Sweetness0   Sweetness = "0"
	Sweetness30  Sweetness = "30"
	Sweetness50  Sweetness = "50"
	Sweetness70  Sweetness = "70"
	Sweetness100 Sweetness = "100"
)

var validSweetnessLevels = []Sweetness{
	Sweetness0,
	Sweetness30,
	Sweetness50,
	Sweetness70,
	Sweetness100,
}

// IsValid reports whether the value matches the canonical sweetness enum.
func (s Sweetness) IsValid() bool {
	for _, candidate := range validSweetnessLevels {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSweetness converts the raw string to Sweetness.
func ParseSweetness(value string) (Sweetness, error) {
	for _, candidate := range validSweetnessLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sweetness level %q", value)
}
