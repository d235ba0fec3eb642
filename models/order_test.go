package models

import (
	"regexp"
	"testing"
)

func TestCalculateShipping(t *testing.T) {
	tests := []struct {
		name                string
		subtotal            float64
		deliveryMethodPrice float64
		want                float64
	}{
		{"below threshold pays flat fee", 100000, 0, FlatShippingFee},
		{"exactly at threshold pays flat fee", 500000, 0, FlatShippingFee},
		{"above threshold ships free", 500001, 0, 0},
		{"delivery method price wins", 600000, 150000, 150000},
		{"delivery method price wins below threshold", 100000, 80000, 80000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateShipping(tt.subtotal, tt.deliveryMethodPrice); got != tt.want {
				t.Errorf("CalculateShipping(%f, %f) = %f, want %f",
					tt.subtotal, tt.deliveryMethodPrice, got, tt.want)
			}
		})
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^ORD-\d{16,}$`)
	for i := 0; i < 10; i++ {
		if n := NewOrderNumber(); !re.MatchString(n) {
			t.Errorf("NewOrderNumber() = %q, want ORD-<millis><3 digits>", n)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusSubmitted, OrderStatusInProgress, OrderStatusPosted,
		OrderStatusDone, OrderStatusCanceled,
	} {
		if !ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%q) = false, want true", s)
		}
	}
	if ValidOrderStatus("shipped") {
		t.Error(`ValidOrderStatus("shipped") = true, want false`)
	}
}

func TestApplyStatusStampsMilestones(t *testing.T) {
	var o Order

	o.ApplyStatus(OrderStatusInProgress)
	if o.ConfirmedAt == nil {
		t.Error("inProgress did not stamp ConfirmedAt")
	}
	o.ApplyStatus(OrderStatusPosted)
	if o.ShippedAt == nil {
		t.Error("posted did not stamp ShippedAt")
	}
	o.ApplyStatus(OrderStatusDone)
	if o.DeliveredAt == nil {
		t.Error("done did not stamp DeliveredAt")
	}
	if o.Status != OrderStatusDone {
		t.Errorf("Status = %q, want done", o.Status)
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		wantErr bool
	}{
		{OrderStatusSubmitted, false},
		{OrderStatusInProgress, false},
		{OrderStatusPosted, true},
		{OrderStatusDone, true},
		{OrderStatusCanceled, true},
	}

	for _, tt := range tests {
		o := Order{Status: tt.status}
		err := o.CanCancel()
		if (err != nil) != tt.wantErr {
			t.Errorf("CanCancel() with status %q: err = %v, wantErr %v", tt.status, err, tt.wantErr)
		}
	}
}

func TestCanCancelMessages(t *testing.T) {
	posted := Order{Status: OrderStatusPosted}
	if err := posted.CanCancel(); err == nil ||
		err.Error() != "order cannot be canceled after it has been posted" {
		t.Errorf("posted CanCancel() = %v", posted.CanCancel())
	}

	canceled := Order{Status: OrderStatusCanceled}
	if err := canceled.CanCancel(); err == nil || err.Error() != "order is already canceled" {
		t.Errorf("canceled CanCancel() = %v", canceled.CanCancel())
	}
}
