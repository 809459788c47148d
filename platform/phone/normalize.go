// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number carries no country prefix.
const DefaultRegion = "US"

// ErrInvalid is returned by Parse for numbers that cannot be dialled.
var ErrInvalid = errors.New("invalid phone number")

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	normalized, err := Parse(input, DefaultRegion)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return normalized
}

// Parse formats a phone number to E.164 using region for national numbers.
// Empty input is returned as is.
func Parse(input, region string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed, nil
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return "", ErrInvalid
	}

	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalid
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}
