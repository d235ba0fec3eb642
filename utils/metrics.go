package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miropet_orders_created_total",
		Help: "Orders persisted at checkout, regardless of payment outcome.",
	})

	PaymentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miropet_payments_processed_total",
		Help: "Payment attempts by result.",
	}, []string{"result"})

	OrdersCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miropet_orders_canceled_total",
		Help: "Orders moved to the canceled state.",
	})

	OTPSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miropet_otp_sent_total",
		Help: "OTP codes handed to the SMS provider.",
	})
)
