package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variation is one purchasable configuration of a product. Each variation
// carries its own price, discount and stock count.
type Variation struct {
	Color    string   `bson:"color,omitempty" json:"color,omitempty"`
	Size     string   `bson:"size,omitempty" json:"size,omitempty"`
	Price    float64  `bson:"price" json:"price"`
	Discount float64  `bson:"discount" json:"discount"`
	Weight   string   `bson:"weight,omitempty" json:"weight,omitempty"`
	Stock    int      `bson:"stock" json:"stock"`
	Images   []string `bson:"images" json:"images"`
}

// FinalPrice returns the unit price after discount.
func (v *Variation) FinalPrice() float64 {
	if v.Discount > 0 {
		return v.Price - v.Discount
	}
	return v.Price
}

// Validate checks the field constraints: price > 0, 0 <= discount < price,
// stock >= 0, at least one image.
func (v *Variation) Validate() error {
	if v.Price <= 0 {
		return errors.New("variation price must be greater than zero")
	}
	if v.Discount < 0 {
		return errors.New("variation discount must be non-negative")
	}
	if v.Discount >= v.Price {
		return errors.New("variation discount must be less than price")
	}
	if v.Stock < 0 {
		return errors.New("variation stock must be a non-negative integer")
	}
	if len(v.Images) == 0 {
		return errors.New("variation requires at least one image")
	}
	return nil
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    []string           `bson:"category" json:"category"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	SKU         string             `bson:"sku,omitempty" json:"sku,omitempty"`
	Variations  []Variation        `bson:"variations" json:"variations"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// VariationAt returns the variation at the given index, or nil when the index
// is out of range.
func (p *Product) VariationAt(index int) *Variation {
	if index < 0 || index >= len(p.Variations) {
		return nil
	}
	return &p.Variations[index]
}

// ValidateVariations checks that a product has at least one valid variation.
func ValidateVariations(variations []Variation) error {
	if len(variations) == 0 {
		return errors.New("at least one variation is required")
	}
	for i := range variations {
		if err := variations[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
