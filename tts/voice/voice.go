// Package voice classifies provider voices and narrows a voice list down
// to the candidates for a language and gender.
package voice

import (
	"fmt"
	"strings"
)

// Voice is a synthesis persona reported by a provider. It is read-only to
// this package.
type Voice struct {
	Name        string `yaml:"name"`        // Display name
	Identifier  string `yaml:"identifier"`  // Provider specific identifier (URI, model path, ID)
	LanguageTag string `yaml:"language"`    // BCP 47 style tag, e.g. "en-US"
}

// String returns the label used in voice selectors.
func (v Voice) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.LanguageTag)
}

// Gender is the result of classifying a voice.
type Gender int

const (
	// GenderUnknown means no keyword matched.
	GenderUnknown Gender = iota
	// GenderFemale means a female keyword matched.
	GenderFemale
	// GenderMale means a male keyword matched and no female keyword did.
	GenderMale
)

// String returns the string representation of the gender.
func (g Gender) String() string {
	switch g {
	case GenderFemale:
		return "female"
	case GenderMale:
		return "male"
	default:
		return "unknown"
	}
}

// GenderFilter is the gender restriction chosen by the user.
type GenderFilter int

const (
	// AnyGender keeps every voice of the language, unknown included.
	AnyGender GenderFilter = iota
	// FemaleOnly keeps voices classified female.
	FemaleOnly
	// MaleOnly keeps voices classified male.
	MaleOnly
)

// GenderFilters lists the filters in selector order.
var GenderFilters = []GenderFilter{AnyGender, FemaleOnly, MaleOnly}

// String returns the string representation of the filter.
func (f GenderFilter) String() string {
	switch f {
	case FemaleOnly:
		return "female"
	case MaleOnly:
		return "male"
	default:
		return "any"
	}
}

// Gender returns the gender a filter requires. AnyGender maps to
// GenderUnknown, which is never compared against.
func (f GenderFilter) Gender() Gender {
	switch f {
	case FemaleOnly:
		return GenderFemale
	case MaleOnly:
		return GenderMale
	default:
		return GenderUnknown
	}
}

// ParseGenderFilter parses "any", "female" or "male".
func ParseGenderFilter(s string) (GenderFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return AnyGender, nil
	case "female":
		return FemaleOnly, nil
	case "male":
		return MaleOnly, nil
	default:
		return AnyGender, fmt.Errorf("invalid gender %q: use any, female or male", s)
	}
}

// hasPrefixFold reports whether s starts with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
