package utils

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// ImageKitAuth holds the signed parameters a client needs to upload directly
// to ImageKit.
type ImageKitAuth struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// NewImageKitAuth signs an upload token valid for 30 minutes. ImageKit
// requires HMAC-SHA1 over token+expire with the private key.
func NewImageKitAuth(privateKey string, now time.Time) ImageKitAuth {
	token := fmt.Sprintf("%d", now.UnixMilli())
	expire := now.Unix() + 1800

	mac := hmac.New(sha1.New, []byte(privateKey))
	mac.Write([]byte(fmt.Sprintf("%s%d", token, expire)))

	return ImageKitAuth{
		Token:     token,
		Expire:    expire,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}
