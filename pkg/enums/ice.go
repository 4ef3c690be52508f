package enums

import "fmt"

// IceLevel is the amount of ice a drink is prepared with.
type IceLevel string

const (
	IceNone   IceLevel = "none"
	IceLess   IceLevel = "less"
	IceNormal IceLevel = "normal"
)

var validIceLevels = []IceLevel{
	IceNone,
	IceLess,
	IceNormal,
}

// IsValid reports whether the value matches the canonical ice level enum.
func (i IceLevel) IsValid() bool {
	for _, candidate := range validIceLevels {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIceLevel converts the raw string to IceLevel.
func ParseIceLevel(value string) (IceLevel, error) {
	for _, candidate := range validIceLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ice level %q", value)
}
