package enums

import "fmt"

// SortMode controls how the menu listing is ordered.
type SortMode string

const (
	SortByName      SortMode = "name"
	SortByPriceAsc  SortMode = "price-asc"
	SortByPriceDesc SortMode = "price-desc"
)

var validSortModes = []SortMode{
	SortByName,
	SortByPriceAsc,
	SortByPriceDesc,
}

// String implements fmt.Stringer.
func (s SortMode) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortMode.
func (s SortMode) IsValid() bool {
	for _, candidate := range validSortModes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortMode converts raw input into a SortMode.
func ParseSortMode(value string) (SortMode, error) {
	for _, candidate := range validSortModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort mode %q", value)
}
