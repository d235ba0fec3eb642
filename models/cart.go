package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuestCartTTL is how long an anonymous cart survives before the TTL index
// removes it.
const GuestCartTTL = 30 * 24 * time.Hour

var (
	ErrCartBothIdentities = errors.New("cart cannot have both userId and sessionId")
	ErrCartNoIdentity     = errors.New("cart must have either userId or sessionId")
)

type CartItem struct {
	ProductID      primitive.ObjectID `bson:"productId" json:"productId"`
	VariationIndex int                `bson:"variationIndex" json:"variationIndex"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	Price          float64            `bson:"price" json:"price"`
	AddedAt        time.Time          `bson:"addedAt" json:"addedAt"`
}

// Cart is owned by exactly one of {user, anonymous session}. Totals are a
// pure function of the items and are recomputed on every mutation.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	SessionID  string             `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Items      []CartItem         `bson:"items" json:"items"`
	TotalItems int                `bson:"totalItems" json:"totalItems"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
	ExpiresAt  *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// ValidateIdentity enforces the ownership invariant: exactly one of userId
// and sessionId must be set.
func (c *Cart) ValidateIdentity() error {
	hasUser := !c.UserID.IsZero()
	hasSession := c.SessionID != ""
	if hasUser && hasSession {
		return ErrCartBothIdentities
	}
	if !hasUser && !hasSession {
		return ErrCartNoIdentity
	}
	return nil
}

// CalculateTotals recomputes totalItems and totalPrice from the current
// items. Never patch the totals incrementally.
func (c *Cart) CalculateTotals() {
	totalItems := 0
	totalPrice := 0.0
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice += item.Price * float64(item.Quantity)
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}

// FindItem returns the index of the line matching product and variation, or -1.
func (c *Cart) FindItem(productID primitive.ObjectID, variationIndex int) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.VariationIndex == variationIndex {
			return i
		}
	}
	return -1
}

// Prepare stamps timestamps, sets guest expiry and recomputes totals. It is
// called before every insert or replace of the cart document.
func (c *Cart) Prepare() error {
	if err := c.ValidateIdentity(); err != nil {
		return err
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.UserID.IsZero() && c.ExpiresAt == nil {
		expires := now.Add(GuestCartTTL)
		c.ExpiresAt = &expires
	}
	c.CalculateTotals()
	return nil
}
