package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartValidateIdentity(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name    string
		cart    Cart
		wantErr error
	}{
		{"user cart", Cart{UserID: userID}, nil},
		{"guest cart", Cart{SessionID: "abc-123"}, nil},
		{"both identities", Cart{UserID: userID, SessionID: "abc-123"}, ErrCartBothIdentities},
		{"no identity", Cart{}, ErrCartNoIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cart.ValidateIdentity(); err != tt.wantErr {
				t.Errorf("ValidateIdentity() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCartCalculateTotals(t *testing.T) {
	cart := Cart{
		UserID: primitive.NewObjectID(),
		Items: []CartItem{
			{ProductID: primitive.NewObjectID(), Quantity: 2, Price: 150000},
			{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 80000},
		},
	}
	cart.CalculateTotals()

	if cart.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", cart.TotalItems)
	}
	if cart.TotalPrice != 380000 {
		t.Errorf("TotalPrice = %f, want 380000", cart.TotalPrice)
	}
}

func TestCartCalculateTotalsEmpty(t *testing.T) {
	cart := Cart{UserID: primitive.NewObjectID(), TotalItems: 5, TotalPrice: 99}
	cart.CalculateTotals()

	if cart.TotalItems != 0 || cart.TotalPrice != 0 {
		t.Errorf("empty cart totals = (%d, %f), want (0, 0)", cart.TotalItems, cart.TotalPrice)
	}
}

func TestCartFindItem(t *testing.T) {
	productID := primitive.NewObjectID()
	cart := Cart{
		Items: []CartItem{
			{ProductID: productID, VariationIndex: 0},
			{ProductID: productID, VariationIndex: 2},
		},
	}

	if got := cart.FindItem(productID, 2); got != 1 {
		t.Errorf("FindItem(variation 2) = %d, want 1", got)
	}
	if got := cart.FindItem(productID, 1); got != -1 {
		t.Errorf("FindItem(missing variation) = %d, want -1", got)
	}
	if got := cart.FindItem(primitive.NewObjectID(), 0); got != -1 {
		t.Errorf("FindItem(missing product) = %d, want -1", got)
	}
}

func TestCartPrepareGuestExpiry(t *testing.T) {
	cart := Cart{SessionID: "session-1"}
	before := time.Now()
	if err := cart.Prepare(); err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	if cart.ExpiresAt == nil {
		t.Fatal("guest cart Prepare() did not set ExpiresAt")
	}
	ttl := cart.ExpiresAt.Sub(before)
	if ttl < GuestCartTTL-time.Minute || ttl > GuestCartTTL+time.Minute {
		t.Errorf("guest cart TTL = %v, want about %v", ttl, GuestCartTTL)
	}
	if cart.CreatedAt.IsZero() || cart.UpdatedAt.IsZero() {
		t.Error("Prepare() did not stamp timestamps")
	}
}

func TestCartPrepareUserCartNoExpiry(t *testing.T) {
	cart := Cart{UserID: primitive.NewObjectID()}
	if err := cart.Prepare(); err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if cart.ExpiresAt != nil {
		t.Error("user cart must not expire")
	}
}

func TestCartPrepareRejectsInvalidIdentity(t *testing.T) {
	cart := Cart{}
	if err := cart.Prepare(); err != ErrCartNoIdentity {
		t.Errorf("Prepare() = %v, want ErrCartNoIdentity", err)
	}
}
