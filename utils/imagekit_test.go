package utils

import (
	"regexp"
	"testing"
	"time"
)

func TestNewImageKitAuth(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	auth := NewImageKitAuth("private-key", now)

	if auth.Token != "1717243200000" {
		t.Errorf("Token = %q, want millisecond timestamp", auth.Token)
	}
	if auth.Expire != now.Unix()+1800 {
		t.Errorf("Expire = %d, want %d", auth.Expire, now.Unix()+1800)
	}
	if !regexp.MustCompile(`^[0-9a-f]{40}$`).MatchString(auth.Signature) {
		t.Errorf("Signature = %q, want 40 hex chars (HMAC-SHA1)", auth.Signature)
	}
}

func TestNewImageKitAuthDeterministic(t *testing.T) {
	now := time.Now()
	a := NewImageKitAuth("key", now)
	b := NewImageKitAuth("key", now)
	if a != b {
		t.Error("same key and time produced different auth parameters")
	}

	other := NewImageKitAuth("other-key", now)
	if a.Signature == other.Signature {
		t.Error("different keys produced the same signature")
	}
}
