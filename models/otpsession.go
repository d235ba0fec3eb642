package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// OTPTTL is the verification window for a one-time password.
	OTPTTL = 5 * time.Minute
	// OTPMaxAttempts caps verification tries per session.
	OTPMaxAttempts = 3
)

var (
	ErrOTPExpired      = errors.New("verification code has expired")
	ErrOTPUsed         = errors.New("verification code has already been used")
	ErrOTPMaxAttempts  = errors.New("too many verification attempts")
	ErrOTPCodeMismatch = errors.New("invalid verification code")
)

// OTPSession is an ephemeral, phone-scoped, single-use login code.
type OTPSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Phone     string             `bson:"phone" json:"phone"`
	OTP       string             `bson:"otp" json:"-"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	IsUsed    bool               `bson:"isUsed" json:"isUsed"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Verify checks a submitted code against the session. It does not mutate the
// session; callers record the attempt or mark the session used themselves.
func (s *OTPSession) Verify(code string, now time.Time) error {
	if s.IsUsed {
		return ErrOTPUsed
	}
	if now.After(s.ExpiresAt) {
		return ErrOTPExpired
	}
	if s.Attempts >= OTPMaxAttempts {
		return ErrOTPMaxAttempts
	}
	if s.OTP != code {
		return ErrOTPCodeMismatch
	}
	return nil
}
