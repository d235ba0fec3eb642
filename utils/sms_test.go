package utils

import (
	"regexp"
	"testing"
)

func TestGenerateOTP(t *testing.T) {
	re := regexp.MustCompile(`^\d{5}$`)
	for i := 0; i < 20; i++ {
		if otp := GenerateOTP(); !re.MatchString(otp) {
			t.Errorf("GenerateOTP() = %q, want 5 digits", otp)
		}
	}
}

func TestFormatMobileNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"09123456789", "09123456789"},
		{"+989123456789", "09123456789"},
		{"989123456789", "09123456789"},
		{"9123456789", "09123456789"},
		{"0912 345 6789", "09123456789"},
		{"0912-345-6789", "09123456789"},
	}
	for _, tt := range tests {
		if got := FormatMobileNumber(tt.in); got != tt.want {
			t.Errorf("FormatMobileNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateMobileNumber(t *testing.T) {
	valid := []string{"09123456789", "+989123456789", "989123456789"}
	for _, m := range valid {
		if !ValidateMobileNumber(m) {
			t.Errorf("ValidateMobileNumber(%q) = false, want true", m)
		}
	}

	invalid := []string{"", "0912345678", "091234567890", "08123456789", "12345"}
	for _, m := range invalid {
		if ValidateMobileNumber(m) {
			t.Errorf("ValidateMobileNumber(%q) = true, want false", m)
		}
	}
}
