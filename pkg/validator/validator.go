package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	maxNameLength     = 100
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt       = "email cannot be empty"
	errEmailLengthFmt      = "email must be between %d and %d characters"
	errEmailInvalidFmt     = "invalid email format"
	errNameEmptyFmt        = "name cannot be empty"
	errNameMaxLengthFmt    = "name must not exceed %d characters"
	errNameControlCharsFmt = "name cannot contain control characters"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

// Name checks a display name.
func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf(errNameEmptyFmt)
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf(errNameMaxLengthFmt, maxNameLength)
	}

	for _, r := range name {
		if r < asciiControlStart || r == asciiDelete {
			return fmt.Errorf(errNameControlCharsFmt)
		}
	}

	return nil
}
