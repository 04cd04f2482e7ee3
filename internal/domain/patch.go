package domain

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stored field names
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldQuantity  = "quantity"
	FieldPrice     = "price"
	FieldStatus    = "status"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Patch holds the stored fields to overwrite, keyed by field name.
// Prices are held as primitive.Decimal128.
type Patch map[string]any

// BuildPatch computes the fields to overwrite from a partial update.
// Only fields set on the update are included, plus updated_at.
func BuildPatch(u ProductUpdate) (Patch, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	patch := Patch{FieldUpdatedAt: u.UpdatedAt}

	if u.Name != nil {
		patch[FieldName] = *u.Name
	}
	if u.Quantity != nil {
		patch[FieldQuantity] = *u.Quantity
	}
	if u.Price != nil {
		price, err := ToStorageDecimal(*u.Price)
		if err != nil {
			return nil, err
		}
		patch[FieldPrice] = price
	}
	if u.Status != nil {
		patch[FieldStatus] = *u.Status
	}

	return patch, nil
}

// Fields returns the patched field names in sorted order
func (p Patch) Fields() []string {
	fields := make([]string, 0, len(p))
	for field := range p {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Validate rejects patches touching fields other than the mutable ones
func (p Patch) Validate() error {
	if _, ok := p[FieldUpdatedAt]; !ok {
		return fmt.Errorf("patch must set %s", FieldUpdatedAt)
	}
	for field := range p {
		switch field {
		case FieldName, FieldQuantity, FieldPrice, FieldStatus, FieldUpdatedAt:
		default:
			return fmt.Errorf("field %q cannot be patched", field)
		}
	}
	return nil
}

// ApplyPatch merges a patch into a product. id and created_at cannot be patched.
func ApplyPatch(p Product, patch Patch) (Product, error) {
	if err := patch.Validate(); err != nil {
		return Product{}, err
	}

	merged := p

	for _, field := range patch.Fields() {
		value := patch[field]

		switch field {
		case FieldName:
			name, ok := value.(string)
			if !ok {
				return Product{}, invalidPatchValue(field, value)
			}
			merged.Name = name
		case FieldQuantity:
			quantity, ok := value.(int)
			if !ok {
				return Product{}, invalidPatchValue(field, value)
			}
			merged.Quantity = quantity
		case FieldPrice:
			stored, ok := value.(primitive.Decimal128)
			if !ok {
				return Product{}, invalidPatchValue(field, value)
			}
			price, err := FromStorageDecimal(stored)
			if err != nil {
				return Product{}, err
			}
			merged.Price = price
		case FieldStatus:
			status, ok := value.(bool)
			if !ok {
				return Product{}, invalidPatchValue(field, value)
			}
			merged.Status = status
		case FieldUpdatedAt:
			updatedAt, ok := value.(time.Time)
			if !ok {
				return Product{}, invalidPatchValue(field, value)
			}
			merged.UpdatedAt = updatedAt
		}
	}

	if err := merged.Validate(); err != nil {
		return Product{}, err
	}

	return merged, nil
}

func invalidPatchValue(field string, value any) error {
	return fmt.Errorf("invalid patch value for %s: %T", field, value)
}
