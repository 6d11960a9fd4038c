// Package validation provides small composable field validators that return
// user-facing (French) messages.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(label string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return label + " est obligatoire."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s ne peut pas dépasser %d caractères.", label, maxLen)
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(label string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s ne peut pas dépasser %d caractères.", label, maxLen)
		}
		return ""
	}
}

// IntRange validates that a field is an integer between minVal and maxVal.
// Empty values are accepted; combine with Required when the field is mandatory.
func IntRange(label string, minVal, maxVal int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return label + " doit être un nombre."
		}
		if i < minVal || i > maxVal {
			return fmt.Sprintf("%s doit être compris entre %d et %d.", label, minVal, maxVal)
		}
		return ""
	}
}

// Decimal validates a non-negative decimal number (prices).
func Decimal(label string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return label + " doit être un nombre positif."
		}
		return ""
	}
}

// Email validates the basic shape of an email address.
func Email(label string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !emailPattern.MatchString(v) {
			return label + " doit être une adresse email valide."
		}
		return ""
	}
}

// HTTPURL validates that a non-empty field is an absolute http(s) URL.
func HTTPURL(label string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		p, err := url.Parse(v)
		if err != nil || (p.Scheme != "http" && p.Scheme != "https") || p.Host == "" {
			return label + " doit être une URL http(s) valide."
		}
		return ""
	}
}

// Date validates an ISO-8601 date or date-time.
func Date(label string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly} {
			if _, err := time.Parse(layout, v); err == nil {
				return ""
			}
		}
		return label + " doit être une date valide (AAAA-MM-JJ)."
	}
}

// OneOf validates that a field matches one of the provided options (case-insensitive).
func OneOf(label string, options []string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		for _, opt := range options {
			if strings.EqualFold(v, opt) {
				return ""
			}
		}
		return fmt.Sprintf("%s doit être l'une des valeurs : %s", label, strings.Join(options, ", "))
	}
}

// Pattern validates that a non-empty field matches the provided regular expression.
func Pattern(label string, re *regexp.Regexp) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return label + " a un format invalide."
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
	order  []string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if msg := v(value); msg != "" {
			if _, exists := fv.errors[field]; !exists {
				fv.order = append(fv.order, field)
			}
			fv.errors[field] = msg
			break
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// HasErrors reports whether any field failed.
func (fv *FieldValidator) HasErrors() bool {
	return len(fv.errors) > 0
}

// First returns the first failing field and its message in validation order.
func (fv *FieldValidator) First() (string, string) {
	if len(fv.order) == 0 {
		return "", ""
	}
	field := fv.order[0]
	return field, fv.errors[field]
}
