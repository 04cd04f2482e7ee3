package domain

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names so errors line up with request payloads
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are checked by sign so that arbitrarily small negatives are rejected
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.Sign()
		}
		return nil
	}, decimal.Decimal{})
}

// ProductIn is the payload accepted when creating a product
type ProductIn struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Status   bool            `json:"status"`
}

// Product is the canonical entity and the form in which it is persisted
type Product struct {
	ID        uuid.UUID       `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Status    bool            `json:"status"`
	CreatedAt time.Time       `json:"created_at" validate:"required"`
	UpdatedAt time.Time       `json:"updated_at" validate:"required"`
}

// ProductOut is the externally visible form of a product
type ProductOut struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Status    bool            `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductUpdate is a partial update. A nil field means "leave unchanged".
// Constraints apply to the pointed-to value, so a present empty name is rejected.
// UpdatedAt is always assigned by the service before the patch is built.
type ProductUpdate struct {
	Name      *string          `json:"name,omitempty" validate:"omitnil,min=1"`
	Quantity  *int             `json:"quantity,omitempty" validate:"omitnil,gte=0"`
	Price     *decimal.Decimal `json:"price,omitempty" validate:"omitnil,gte=0"`
	Status    *bool            `json:"status,omitempty"`
	UpdatedAt time.Time        `json:"updated_at" validate:"required"`
}

// ProductUpdateOut is returned after a successful partial update
type ProductUpdateOut ProductOut

// NewProductIn builds a creation payload, failing on the first violated constraint
func NewProductIn(name string, quantity int, price decimal.Decimal, status bool) (ProductIn, error) {
	in := ProductIn{
		Name:     name,
		Quantity: quantity,
		Price:    price,
		Status:   status,
	}
	if err := in.Validate(); err != nil {
		return ProductIn{}, err
	}
	return in, nil
}

// Validate checks the creation payload constraints
func (in ProductIn) Validate() error {
	return validateStruct(in)
}

// NewProduct assigns identity and timestamps to a creation payload
func NewProduct(in ProductIn, id uuid.UUID, now time.Time) (Product, error) {
	p := Product{
		ID:        id,
		Name:      in.Name,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Validate checks the stored form constraints
func (p Product) Validate() error {
	return validateStruct(p)
}

// Out projects the product to its externally visible form
func (p Product) Out() ProductOut {
	return ProductOut{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// UpdateOut projects the product to the form returned after an update
func (p Product) UpdateOut() ProductUpdateOut {
	return ProductUpdateOut(p.Out())
}

// Validate checks the constraints of the fields present in the update
func (u ProductUpdate) Validate() error {
	return validateStruct(u)
}

// IsEmpty reports whether the update sets no content field
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Quantity == nil && u.Price == nil && u.Status == nil
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		constraint := fe.Tag()
		if fe.Param() != "" {
			constraint += "=" + fe.Param()
		}
		return &ValidationError{Field: fe.Field(), Constraint: constraint}
	}

	return err
}
