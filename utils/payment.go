package utils

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentRequest carries what a gateway needs to charge an order.
type PaymentRequest struct {
	OrderID       primitive.ObjectID
	Amount        float64
	PaymentMethod string
	UserID        primitive.ObjectID
	Email         string
}

// PaymentResult is the gateway's answer: a transaction id on success, a
// reason on failure.
type PaymentResult struct {
	Success       bool
	TransactionID string
	Error         string
}

// PaymentGateway abstracts the payment step of checkout. The production
// adapter for a real bank gateway plugs in here; nothing else in the code
// may depend on a concrete implementation.
type PaymentGateway interface {
	ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// SimulatedGateway approves roughly 90% of payments after an artificial
// delay. Stand-in until a real bank integration lands.
type SimulatedGateway struct {
	SuccessRate float64
	Delay       time.Duration
	rng         *rand.Rand
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{
		SuccessRate: 0.9,
		Delay:       time.Second,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSimulatedGatewayWithSource fixes the randomness, for deterministic tests.
func NewSimulatedGatewayWithSource(successRate float64, delay time.Duration, src rand.Source) *SimulatedGateway {
	return &SimulatedGateway{SuccessRate: successRate, Delay: delay, rng: rand.New(src)}
}

func (g *SimulatedGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	select {
	case <-time.After(g.Delay):
	case <-ctx.Done():
		return PaymentResult{}, ctx.Err()
	}

	if g.rng.Float64() < g.SuccessRate {
		return PaymentResult{
			Success:       true,
			TransactionID: fmt.Sprintf("TX%d%03d", time.Now().UnixMilli(), g.rng.Intn(1000)),
		}, nil
	}
	return PaymentResult{
		Success: false,
		Error:   "Payment failed due to insufficient funds or network error",
	}, nil
}
