// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package validate implements input validation as a fluent rule chain.
//
// A handler builds one [Validator] per request, chains the rules for each
// field, and calls Err once at the end. Failures accumulate rather than
// short-circuit, so a response can report every bad field in one round trip.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/pixagen/pixagen/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator accumulates field-level failures across a rule chain.
//
// The zero value is ready to use. A Validator serves exactly one
// request/operation and is not safe for concurrent use.
type Validator struct {
	errs []apperr.FieldError
}

// fail records one field failure and keeps the chain going.
func (v *Validator) fail(field, format string, args ...any) *Validator {
	v.errs = append(v.errs, apperr.FieldError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
	return v
}

// Required fails when the value is empty after trimming whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) != "" {
		return v
	}
	return v.fail(field, "This field is required")
}

// MinLen fails when the value has fewer than min Unicode characters.
// Lengths count runes, not bytes, so multibyte input is not penalized.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) >= min {
		return v
	}
	return v.fail(field, "Minimum %d characters", min)
}

// MaxLen fails when the value has more than max Unicode characters.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) <= max {
		return v
	}
	return v.fail(field, "Maximum %d characters", max)
}

// Email fails when the value does not parse as an RFC 5322 address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		return v.fail(field, "Must be a valid email address")
	}
	return v
}

// OneOf fails when the value is not a member of the allowed set. Used for
// closed enums arriving as strings (roles, review actions, job states).
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, candidate := range allowed {
		if value == candidate {
			return v
		}
	}
	return v.fail(field, "Must be one of: %s", strings.Join(allowed, ", "))
}

// Custom fails with the given message when failed is true. It covers the
// one-off rules not worth a named method.
//
//	v.Custom("attempts", attempts < 1, "Must be at least 1")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		return v.fail(field, "%s", message)
	}
	return v
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err terminates the chain: nil when every rule passed, otherwise a single
// VALIDATION_ERROR carrying all accumulated field failures.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// RequiredError builds a single-field validation error without a chain, for
// failures detected outside the Validator (path params, decode steps).
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
