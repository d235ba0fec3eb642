package utils

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func paymentReq() PaymentRequest {
	return PaymentRequest{
		OrderID:       primitive.NewObjectID(),
		Amount:        250000,
		PaymentMethod: "online",
		UserID:        primitive.NewObjectID(),
	}
}

func TestSimulatedGatewayAlwaysApproves(t *testing.T) {
	g := NewSimulatedGatewayWithSource(1.0, 0, rand.NewSource(1))

	res, err := g.ProcessPayment(context.Background(), paymentReq())
	if err != nil {
		t.Fatalf("ProcessPayment() error: %v", err)
	}
	if !res.Success {
		t.Fatal("success rate 1.0 produced a failure")
	}
	if !strings.HasPrefix(res.TransactionID, "TX") {
		t.Errorf("TransactionID = %q, want TX prefix", res.TransactionID)
	}
}

func TestSimulatedGatewayAlwaysDeclines(t *testing.T) {
	g := NewSimulatedGatewayWithSource(0, 0, rand.NewSource(1))

	res, err := g.ProcessPayment(context.Background(), paymentReq())
	if err != nil {
		t.Fatalf("ProcessPayment() error: %v", err)
	}
	if res.Success {
		t.Fatal("success rate 0 produced a success")
	}
	if res.Error == "" {
		t.Error("declined payment has no error message")
	}
	if res.TransactionID != "" {
		t.Errorf("declined payment has TransactionID %q", res.TransactionID)
	}
}

func TestSimulatedGatewayHonorsContext(t *testing.T) {
	g := NewSimulatedGatewayWithSource(1.0, time.Minute, rand.NewSource(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.ProcessPayment(ctx, paymentReq())
	if err != context.Canceled {
		t.Errorf("ProcessPayment(canceled ctx) = %v, want context.Canceled", err)
	}
}
