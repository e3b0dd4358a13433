package enums

import "fmt"

// Category partitions the menu into a fixed set of sections.
type Category string

const (
	CategoryGelatos    Category = "gelatos"
	CategorySorbetes   Category = "sorbetes"
	CategoryEspeciales Category = "especiales"
	CategoryExtras     Category = "extras"
)

// CategoryAll is the filter sentinel meaning "no category restriction".
// It is never a valid product category.
const CategoryAll Category = "all"

var validCategories = []Category{
	CategoryGelatos,
	CategorySorbetes,
	CategoryEspeciales,
	CategoryExtras,
}

// Categories returns the menu categories in display order.
func Categories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known product Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// ParseCategoryFilter accepts any product category plus CategoryAll.
func ParseCategoryFilter(value string) (Category, error) {
	if value == "" || value == string(CategoryAll) {
		return CategoryAll, nil
	}
	return ParseCategory(value)
}
