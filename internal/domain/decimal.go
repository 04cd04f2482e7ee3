package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errDecimalOutOfRange = errors.New("value does not fit decimal128 exactly")
	errDecimalNotFinite  = errors.New("value is not a finite decimal")
)

// ToStorageDecimal converts a decimal to the storage engine's native decimal type.
// The coefficient and exponent are carried over as is, so the scale survives
// ("19.990" stays "19.990"). Values that would need rounding fail.
func ToStorageDecimal(v decimal.Decimal) (primitive.Decimal128, error) {
	d, ok := primitive.ParseDecimal128FromBigInt(v.Coefficient(), int(v.Exponent()))
	if !ok {
		return primitive.Decimal128{}, &ConversionError{Value: v.String(), Err: errDecimalOutOfRange}
	}
	return d, nil
}

// FromStorageDecimal converts a stored decimal back to an arbitrary precision decimal
func FromStorageDecimal(v primitive.Decimal128) (decimal.Decimal, error) {
	if v.IsNaN() || v.IsInf() != 0 {
		return decimal.Decimal{}, &ConversionError{Value: v.String(), Err: errDecimalNotFinite}
	}

	coefficient, exp, err := v.BigInt()
	if err != nil {
		return decimal.Decimal{}, &ConversionError{Value: v.String(), Err: err}
	}

	return decimal.NewFromBigInt(coefficient, int32(exp)), nil
}
