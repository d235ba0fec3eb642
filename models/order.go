package models

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusSubmitted  OrderStatus = "submitted"
	OrderStatusInProgress OrderStatus = "inProgress"
	OrderStatusPosted     OrderStatus = "posted"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCanceled   OrderStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ValidOrderStatus reports whether s is one of the known order states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusSubmitted, OrderStatusInProgress, OrderStatusPosted,
		OrderStatusDone, OrderStatusCanceled:
		return true
	}
	return false
}

type VariationDetails struct {
	Color  string `bson:"color,omitempty" json:"color,omitempty"`
	Size   string `bson:"size,omitempty" json:"size,omitempty"`
	Weight string `bson:"weight,omitempty" json:"weight,omitempty"`
}

// OrderItem is an immutable snapshot of a cart line taken at checkout time.
// Product fields are copied so later product edits don't alter history.
type OrderItem struct {
	ProductID        primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName      string             `bson:"productName" json:"productName"`
	ProductBrand     string             `bson:"productBrand,omitempty" json:"productBrand,omitempty"`
	VariationIndex   int                `bson:"variationIndex" json:"variationIndex"`
	VariationDetails VariationDetails   `bson:"variationDetails" json:"variationDetails"`
	Quantity         int                `bson:"quantity" json:"quantity"`
	UnitPrice        float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice       float64            `bson:"totalPrice" json:"totalPrice"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`
	Items       []OrderItem        `bson:"items" json:"items"`

	Subtotal     float64 `bson:"subtotal" json:"subtotal"`
	ShippingCost float64 `bson:"shippingCost" json:"shippingCost"`
	Tax          float64 `bson:"tax" json:"tax"`
	Discount     float64 `bson:"discount" json:"discount"`
	TotalAmount  float64 `bson:"totalAmount" json:"totalAmount"`

	DeliveryMethodID    primitive.ObjectID `bson:"deliveryMethodId,omitempty" json:"deliveryMethodId,omitempty"`
	DeliveryMethodName  string             `bson:"deliveryMethodName,omitempty" json:"deliveryMethodName,omitempty"`
	DeliveryMethodPrice float64            `bson:"deliveryMethodPrice,omitempty" json:"deliveryMethodPrice,omitempty"`

	ShippingAddressID primitive.ObjectID `bson:"shippingAddressId" json:"shippingAddressId"`
	BillingAddressID  primitive.ObjectID `bson:"billingAddressId,omitempty" json:"billingAddressId,omitempty"`

	Status        OrderStatus   `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string        `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	ShippedAt   *time.Time `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`

	CustomerNotes  string `bson:"customerNotes,omitempty" json:"customerNotes,omitempty"`
	AdminNotes     string `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	TrackingNumber string `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
}

// FreeShippingThreshold and FlatShippingFee implement the default shipping
// rule: orders above the threshold ship free, everything else pays the flat
// fee. A selected delivery method overrides both.
const (
	FreeShippingThreshold = 500000.0
	FlatShippingFee       = 50000.0
)

// CalculateShipping returns the shipping cost for a subtotal. A positive
// delivery method price always wins.
func CalculateShipping(subtotal, deliveryMethodPrice float64) float64 {
	if deliveryMethodPrice > 0 {
		return deliveryMethodPrice
	}
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// NewOrderNumber generates a customer-facing order reference.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

// ApplyStatus sets the order status and stamps the matching milestone.
func (o *Order) ApplyStatus(status OrderStatus) {
	o.Status = status
	now := time.Now()
	switch status {
	case OrderStatusInProgress:
		o.ConfirmedAt = &now
	case OrderStatusPosted:
		o.ShippedAt = &now
	case OrderStatusDone:
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
}

// CanCancel reports whether the order may still be canceled. Orders that have
// been posted or delivered cannot be, and canceling twice is rejected.
func (o *Order) CanCancel() error {
	switch o.Status {
	case OrderStatusPosted, OrderStatusDone:
		return fmt.Errorf("order cannot be canceled after it has been posted")
	case OrderStatusCanceled:
		return fmt.Errorf("order is already canceled")
	}
	return nil
}
