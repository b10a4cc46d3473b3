package core

import "fmt"

// Category is the closed set of spending classifications.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryFood
	CategoryTransportation
	CategoryUtilities
	CategoryEntertainment
	CategorySubscription
	CategoryOther
)

var categoryNames = [...]string{
	CategoryUnknown:        "",
	CategoryFood:           "Food",
	CategoryTransportation: "Transportation",
	CategoryUtilities:      "Utilities",
	CategoryEntertainment:  "Entertainment",
	CategorySubscription:   "Subscription",
	CategoryOther:          "Other",
}

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryUtilities,
		CategoryEntertainment,
		CategorySubscription,
		CategoryOther,
	}
}

// ParseCategory maps an exact category name to its Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if categoryNames[c] == s {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Valid() bool {
	return c > CategoryUnknown && c <= CategoryOther
}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
