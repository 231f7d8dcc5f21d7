// Package form validates the non-monetary text and integer inputs of the
// client: display names and lobby parameters. Messages match the amount
// package so a front end can render both the same way.
package form

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"chain-poker/internal/amount"
)

// ErrValidationFailed is shared with the amount package.
var ErrValidationFailed = amount.ErrValidationFailed

// Result is one validation pass over a raw input. Error is empty when valid.
type Result struct {
	Raw   string `json:"raw"`
	Error string `json:"error,omitempty"`
}

func (r Result) Valid() bool { return r.Error == "" }

func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidationFailed, r.Error)
}

type TextRules struct {
	Required  bool
	MinLength int
	MaxLength int
}

// DisplayNameRules bound the username sent with buy-in and lobby creation.
var DisplayNameRules = TextRules{Required: true, MinLength: 3, MaxLength: 15}

// ValidateText checks required, then maximum length, then minimum length.
// Lengths count runes.
func ValidateText(raw string, rules TextRules) Result {
	out := Result{Raw: raw}
	n := utf8.RuneCountInString(raw)
	switch {
	case rules.Required && strings.TrimSpace(raw) == "":
		out.Error = "This field is required"
	case rules.MaxLength > 0 && n > rules.MaxLength:
		out.Error = fmt.Sprintf("This field must be at most %d characters long", rules.MaxLength)
	case rules.MinLength > 0 && n < rules.MinLength:
		out.Error = fmt.Sprintf("This field must be at least %d characters long", rules.MinLength)
	}
	return out
}

type IntRules struct {
	Required bool
	Min      *int64
	Max      *int64
}

// Bound is a convenience for building IntRules literals.
func Bound(v int64) *int64 { return &v }

// IntResult carries the parsed value alongside the validation result.
type IntResult struct {
	Result
	Value int64 `json:"value"`
}

// ValidateInt checks required, numeric, whole, maximum, then minimum.
// An empty optional value reads as zero.
func ValidateInt(raw string, rules IntRules) IntResult {
	out := IntResult{Result: Result{Raw: raw}}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if rules.Required {
			out.Error = "This field is required"
		}
		return out
	}

	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		if _, ferr := strconv.ParseFloat(trimmed, 64); ferr == nil {
			out.Error = "This field must be a whole number"
		} else {
			out.Error = "This field must be numeric"
		}
		return out
	}
	out.Value = v

	switch {
	case rules.Max != nil && v > *rules.Max:
		out.Error = fmt.Sprintf("This field cannot exceed %d", *rules.Max)
	case rules.Min != nil && v < *rules.Min:
		out.Error = fmt.Sprintf("This field must be at least %d", *rules.Min)
	}
	return out
}
