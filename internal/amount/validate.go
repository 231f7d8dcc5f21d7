package amount

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Rules are applied in order: required, parseable, minimum, maximum.
// AllowZero lets an exact zero pass an otherwise non-zero minimum, which is
// how a raise field defaults to check/call.
type Rules struct {
	Required  bool
	Min       *big.Int
	Max       *big.Int
	AllowZero bool
}

// ValidatedAmount is the outcome of one validation pass. BaseUnits and Error
// are mutually exclusive; both are empty only before the first pass.
type ValidatedAmount struct {
	Raw       string   `json:"raw"`
	BaseUnits *big.Int `json:"base_units,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (v ValidatedAmount) Valid() bool {
	return v.BaseUnits != nil && v.Error == ""
}

// Err returns nil for a valid amount, otherwise an error wrapping
// ErrValidationFailed with the rule message.
func (v ValidatedAmount) Err() error {
	if v.Valid() {
		return nil
	}
	msg := v.Error
	if msg == "" {
		msg = "not validated"
	}
	return fmt.Errorf("%w: %s", ErrValidationFailed, msg)
}

// MarshalJSON encodes base units as a decimal string so browser clients do
// not lose precision above 2^53.
func (v ValidatedAmount) MarshalJSON() ([]byte, error) {
	wire := struct {
		Raw       string `json:"raw"`
		BaseUnits string `json:"base_units,omitempty"`
		Error     string `json:"error,omitempty"`
	}{Raw: v.Raw, Error: v.Error}
	if v.BaseUnits != nil {
		wire.BaseUnits = v.BaseUnits.String()
	}
	return json.Marshal(wire)
}

// Validate checks raw against rules. An empty or blank optional value reads
// as zero; any other surrounding whitespace makes the number malformed.
func Validate(raw string, rules Rules) ValidatedAmount {
	out := ValidatedAmount{Raw: raw}
	number := raw

	if strings.TrimSpace(raw) == "" {
		if rules.Required {
			out.Error = "This field is required"
			return out
		}
		number = "0"
	}

	units, err := ToBaseUnits(number)
	if err != nil {
		out.Error = "This field must be a positive number"
		return out
	}

	zeroAllowed := rules.AllowZero && units.Sign() == 0
	if rules.Min != nil && units.Cmp(rules.Min) < 0 && !zeroAllowed {
		out.Error = "This field must be at least " + MustDecimal(rules.Min)
		return out
	}
	if rules.Max != nil && units.Cmp(rules.Max) > 0 {
		out.Error = "This field cannot exceed " + MustDecimal(rules.Max)
		return out
	}

	out.BaseUnits = units
	return out
}
