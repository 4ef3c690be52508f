package enums

import "fmt"

// Size describes the cup sizes offered on the menu.
type Size string

const (
	SizeM Size = "M"
	SizeL Size = "L"
)

var validSizes = []Size{
	SizeM,
	SizeL,
}

// IsValid reports whether the value matches the canonical size enum.
func (s Size) IsValid() bool {
	for _, candidate := range validSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSize converts the raw string to Size.
func ParseSize(value string) (Size, error) {
	for _, candidate := range validSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid size %q", value)
}
