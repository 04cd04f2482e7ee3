package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductIn_Constraints(t *testing.T) {
	tests := []struct {
		name       string
		inName     string
		quantity   int
		price      string
		field      string
		constraint string
	}{
		{name: "empty name", inName: "", quantity: 1, price: "1.00", field: "name", constraint: "required"},
		{name: "negative quantity", inName: "Widget", quantity: -1, price: "1.00", field: "quantity", constraint: "gte=0"},
		{name: "negative price", inName: "Widget", quantity: 1, price: "-0.01", field: "price", constraint: "gte=0"},
		{name: "tiny negative price", inName: "Widget", quantity: 1, price: "-0.00000000000000000000000000000000000001", field: "price", constraint: "gte=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProductIn(tt.inName, tt.quantity, decimal.RequireFromString(tt.price), true)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, tt.constraint, validationErr.Constraint)
		})
	}
}

func TestNewProductIn_AcceptsZeroValues(t *testing.T) {
	in, err := NewProductIn("Freebie", 0, decimal.Zero, false)
	require.NoError(t, err)
	assert.Equal(t, "Freebie", in.Name)
	assert.True(t, in.Price.IsZero())
}

func TestNewProduct_AssignsIdentityAndTimestamps(t *testing.T) {
	in, err := NewProductIn("Widget", 10, decimal.RequireFromString("19.99"), true)
	require.NoError(t, err)

	id := uuid.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p, err := NewProduct(in, id, now)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	out := p.Out()
	assert.Equal(t, "Widget", out.Name)
	assert.Equal(t, 10, out.Quantity)
	assert.Equal(t, "19.99", out.Price.String())
	assert.Equal(t, ProductOut(p.UpdateOut()), out)
}

func TestNewProduct_RejectsNilID(t *testing.T) {
	in, err := NewProductIn("Widget", 1, decimal.NewFromInt(1), true)
	require.NoError(t, err)

	_, err = NewProduct(in, uuid.Nil, time.Now())

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "id", validationErr.Field)
}

func TestProductUpdate_ValidatesOnlyPresentFields(t *testing.T) {
	now := time.Now()

	assert.NoError(t, ProductUpdate{UpdatedAt: now}.Validate())

	empty := ""
	err := ProductUpdate{Name: &empty, UpdatedAt: now}.Validate()
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
	assert.Equal(t, "min=1", validationErr.Constraint)

	negative := -3
	err = ProductUpdate{Quantity: &negative, UpdatedAt: now}.Validate()
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "quantity", validationErr.Field)

	price := decimal.RequireFromString("-1")
	err = ProductUpdate{Price: &price, UpdatedAt: now}.Validate()
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "price", validationErr.Field)

	zero := 0
	assert.NoError(t, ProductUpdate{Quantity: &zero, UpdatedAt: now}.Validate())
}

// Property: valid creation payloads survive projection to the output form unchanged
func TestProperty_OutputFormPreservesInput(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output form carries every input field", prop.ForAll(
		func(name string, quantity int, cents int64, status bool) bool {
			if name == "" {
				name = "p"
			}
			price := decimal.New(cents, -2)

			in, err := NewProductIn(name, quantity, price, status)
			if err != nil {
				t.Logf("FAIL: unexpected validation error: %v", err)
				return false
			}

			p, err := NewProduct(in, uuid.New(), time.Now().UTC())
			if err != nil {
				return false
			}
			out := p.Out()

			return out.Name == name &&
				out.Quantity == quantity &&
				out.Price.Equal(price) &&
				out.Status == status &&
				out.CreatedAt.Equal(out.UpdatedAt)
		},
		gen.AlphaString(),
		gen.IntRange(0, 1000000),
		gen.Int64Range(0, 100000000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ProductUpdate{UpdatedAt: time.Now()}.IsEmpty())

	status := false
	assert.False(t, ProductUpdate{Status: &status}.IsEmpty())
}
