package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"github.com/amirhose1n/miropet-server/config"
)

var (
	nonDigitRe        = regexp.MustCompile(`\D`)
	iranianMobileRe   = regexp.MustCompile(`^09\d{9}$`)
	withCountryCodeRe = regexp.MustCompile(`^(\+98|98)9\d{9}$`)
)

// GenerateOTP returns a random 5-digit verification code.
func GenerateOTP() string {
	return fmt.Sprintf("%05d", 10000+rand.Intn(90000))
}

// FormatMobileNumber normalizes a phone number to the standard local format
// (09XXXXXXXXX), stripping separators and the +98/98 country prefix.
func FormatMobileNumber(mobile string) string {
	clean := nonDigitRe.ReplaceAllString(mobile, "")

	if len(clean) == 12 && clean[:2] == "98" {
		return "0" + clean[2:]
	}
	if len(clean) == 10 && clean[0] == '9' {
		return "0" + clean
	}
	return clean
}

// ValidateMobileNumber reports whether the number is a valid Iranian mobile
// number, before or after normalization.
func ValidateMobileNumber(mobile string) bool {
	clean := nonDigitRe.ReplaceAllString(mobile, "")
	return iranianMobileRe.MatchString(clean) || withCountryCodeRe.MatchString(clean)
}

// SMSClient talks to the SMS.ir verify API to deliver OTP codes.
type SMSClient struct {
	APIKey     string
	TemplateID string
	BaseURL    string
	HTTPClient *http.Client
}

func NewSMSClient() *SMSClient {
	return &SMSClient{
		APIKey:     config.GetEnv("SMS_IR_API_KEY", ""),
		TemplateID: config.GetEnv("SMS_IR_TEMPLATE_ID", "905649"),
		BaseURL:    "https://api.sms.ir/v1",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type smsParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type smsVerifyRequest struct {
	Mobile     string         `json:"mobile"`
	TemplateID string         `json:"templateId"`
	Parameters []smsParameter `json:"parameters"`
}

type smsVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// SendOTP delivers the code to the given mobile number.
func (s *SMSClient) SendOTP(ctx context.Context, mobile, otp string) error {
	formatted := FormatMobileNumber(mobile)
	if !iranianMobileRe.MatchString(formatted) {
		return fmt.Errorf("invalid mobile number")
	}

	payload, err := json.Marshal(smsVerifyRequest{
		Mobile:     formatted,
		TemplateID: s.TemplateID,
		Parameters: []smsParameter{{Name: "code", Value: otp}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/send/verify", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var result smsVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("sms service returned invalid response: %w", err)
	}

	if !result.Status {
		if result.Message != "" {
			return fmt.Errorf("sms delivery failed: %s", result.Message)
		}
		return fmt.Errorf("sms delivery failed")
	}
	return nil
}
