package utils

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID().Hex()
	token, err := GenerateJWT(userID, "admin")
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %q, want %q", claims.UserID, userID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	token, err := GenerateJWT(primitive.NewObjectID().Hex(), "customer")
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ValidateJWT(token); err == nil {
		t.Error("ValidateJWT() accepted token signed with another secret")
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := ValidateJWT("not.a.token"); err == nil {
		t.Error("ValidateJWT() accepted malformed token")
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	a, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error: %v", err)
	}
	if len(a) != 128 {
		t.Errorf("refresh token length = %d, want 128 hex chars", len(a))
	}

	b, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error: %v", err)
	}
	if a == b {
		t.Error("two refresh tokens are identical")
	}
}

func TestGenerateTokenPair(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	pair, err := GenerateTokenPair(primitive.NewObjectID().Hex(), "customer")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("GenerateTokenPair() returned empty token")
	}
}
