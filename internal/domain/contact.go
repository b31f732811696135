package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	MaxFirstNameLen = 100
	MinPhoneDigits  = 7

	// Notes is validated against two different maximums depending on the
	// call path: interactive preview and the persisted schema.
	MaxNotesLenPreview = 500
	MaxNotesLenStored  = 1000
)

// ParsedRow maps a source column header, exactly as written in the file,
// to the raw cell value of one data row.
type ParsedRow map[string]string

// Contact is a normalized contact record ready for distribution.
type Contact struct {
	FirstName string `csv:"first_name" db:"first_name" json:"first_name"`
	Phone     string `csv:"phone"      db:"phone"      json:"phone"`
	Notes     string `csv:"notes"      db:"notes"      json:"notes"`
}

// Validate reports every data-quality problem of the record as a
// human-readable string. maxNotesLen selects between the preview and the
// persisted-schema limit.
func (c *Contact) Validate(maxNotesLen int) []string {
	var problems []string

	if c.FirstName == "" {
		problems = append(problems, "FirstName is required")
	} else if len(c.FirstName) > MaxFirstNameLen {
		problems = append(problems, fmt.Sprintf("FirstName must not exceed %d characters", MaxFirstNameLen))
	}

	if c.Phone == "" {
		problems = append(problems, "Phone is required")
	} else if digitCount(c.Phone) < MinPhoneDigits {
		problems = append(problems, "Phone number appears to be invalid")
	}

	if len(c.Notes) > maxNotesLen {
		problems = append(problems, fmt.Sprintf("Notes must not exceed %d characters", maxNotesLen))
	}

	return problems
}

func digitCount(s string) int {
	return len(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s))
}
