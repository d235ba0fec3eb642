package models

import (
	"testing"
	"time"
)

func validSession(now time.Time) OTPSession {
	return OTPSession{
		Phone:     "09123456789",
		OTP:       "12345",
		ExpiresAt: now.Add(OTPTTL),
		CreatedAt: now,
	}
}

func TestOTPVerifySuccess(t *testing.T) {
	now := time.Now()
	s := validSession(now)
	if err := s.Verify("12345", now); err != nil {
		t.Errorf("Verify(correct code) = %v, want nil", err)
	}
}

func TestOTPVerifyMismatch(t *testing.T) {
	now := time.Now()
	s := validSession(now)
	if err := s.Verify("99999", now); err != ErrOTPCodeMismatch {
		t.Errorf("Verify(wrong code) = %v, want ErrOTPCodeMismatch", err)
	}
}

func TestOTPVerifyExpired(t *testing.T) {
	now := time.Now()
	s := validSession(now)
	if err := s.Verify("12345", now.Add(OTPTTL+time.Second)); err != ErrOTPExpired {
		t.Errorf("Verify(after TTL) = %v, want ErrOTPExpired", err)
	}
}

func TestOTPVerifyUsed(t *testing.T) {
	now := time.Now()
	s := validSession(now)
	s.IsUsed = true
	if err := s.Verify("12345", now); err != ErrOTPUsed {
		t.Errorf("Verify(used session) = %v, want ErrOTPUsed", err)
	}
}

func TestOTPVerifyMaxAttempts(t *testing.T) {
	now := time.Now()
	s := validSession(now)
	s.Attempts = OTPMaxAttempts
	if err := s.Verify("12345", now); err != ErrOTPMaxAttempts {
		t.Errorf("Verify(attempts exhausted) = %v, want ErrOTPMaxAttempts", err)
	}
}

// Used wins over expired, expired over attempts: the caller sees the most
// terminal state first.
func TestOTPVerifyCheckOrder(t *testing.T) {
	now := time.Now()
	s := validSession(now)
	s.IsUsed = true
	s.Attempts = OTPMaxAttempts
	if err := s.Verify("12345", now.Add(OTPTTL+time.Hour)); err != ErrOTPUsed {
		t.Errorf("Verify() = %v, want ErrOTPUsed", err)
	}
}
