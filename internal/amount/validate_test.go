package amount

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRequired(t *testing.T) {
	v := Validate("", Rules{Required: true})
	require.Equal(t, "This field is required", v.Error)
	require.Nil(t, v.BaseUnits)
	require.ErrorIs(t, v.Err(), ErrValidationFailed)
}

func TestValidateWithinBounds(t *testing.T) {
	v := Validate("5", Rules{Min: big.NewInt(2_000_000), Max: big.NewInt(10_000_000)})
	require.Empty(t, v.Error)
	require.Equal(t, "5000000", v.BaseUnits.String())
	require.NoError(t, v.Err())
}

func TestValidateRuleOrder(t *testing.T) {
	rules := Rules{Required: true, Min: big.NewInt(2_000_000), Max: big.NewInt(10_500_000)}

	require.Equal(t, "This field must be a positive number", Validate("-3", rules).Error)
	require.Equal(t, "This field must be at least 2", Validate("1.999999", rules).Error)
	require.Equal(t, "This field cannot exceed 10.5", Validate("10.500001", rules).Error)
	require.True(t, Validate("10.5", rules).Valid())
}

func TestValidateAllowZero(t *testing.T) {
	rules := Rules{Min: big.NewInt(500_000), AllowZero: true}

	zero := Validate("0", rules)
	require.True(t, zero.Valid())
	require.Zero(t, zero.BaseUnits.Sign())

	below := Validate("0.1", rules)
	require.Equal(t, "This field must be at least 0.5", below.Error)

	withoutAllow := Validate("0", Rules{Min: big.NewInt(500_000)})
	require.False(t, withoutAllow.Valid())
}

func TestValidateOptionalEmptyReadsAsZero(t *testing.T) {
	v := Validate("", Rules{AllowZero: true, Min: big.NewInt(1)})
	require.True(t, v.Valid())
	require.Zero(t, v.BaseUnits.Sign())
}

func TestValidateRejectsSurroundingWhitespace(t *testing.T) {
	for _, raw := range []string{" 5 ", "5 ", "\t5", "1.5\n"} {
		v := Validate(raw, Rules{Required: true})
		require.Equal(t, "This field must be a positive number", v.Error, "raw %q", raw)
		require.Equal(t, raw, v.Raw)
	}
	require.Equal(t, "This field is required", Validate("  ", Rules{Required: true}).Error)
	require.True(t, Validate("  ", Rules{}).Valid())
}

func TestValidatedAmountJSON(t *testing.T) {
	b, err := json.Marshal(Validate("9007199254740993", Rules{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"raw":"9007199254740993","base_units":"9007199254740993000000"}`, string(b))

	b, err = json.Marshal(Validate("x", Rules{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"raw":"x","error":"This field must be a positive number"}`, string(b))
}
