package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func initTestSecret(t *testing.T) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("failed to init secret: %v", err)
	}
}

func TestGenerateJWTCarriesSessionClaims(t *testing.T) {
	initTestSecret(t)

	tokenString, err := GenerateJWT(42, "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	token, err := VerifyJWT(tokenString)
	if err != nil {
		t.Fatalf("generated token did not verify: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", token.Claims)
	}

	if claims["user_id"] != float64(42) {
		t.Errorf("expected user_id 42, got %v", claims["user_id"])
	}
	if claims["email"] != "ana@example.com" {
		t.Errorf("unexpected email claim %v", claims["email"])
	}
	if claims["iss"] != issuer {
		t.Errorf("expected issuer %q, got %v", issuer, claims["iss"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("token is missing an expiry")
	}
	ttl := time.Until(time.Unix(int64(exp), 0))
	if ttl > TokenTTL || ttl < TokenTTL-time.Minute {
		t.Errorf("expected ttl close to %v, got %v", TokenTTL, ttl)
	}
}

func TestVerifyJWTRejectsForeignIssuer(t *testing.T) {
	initTestSecret(t)

	claims := jwt.MapClaims{
		"iss":     "someone-else",
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := VerifyJWT(tokenString); err == nil {
		t.Error("token with a foreign issuer was accepted")
	}
}

func TestVerifyJWTRejectsExpiredToken(t *testing.T) {
	initTestSecret(t)

	claims := jwt.MapClaims{
		"iss":     issuer,
		"user_id": 1,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := VerifyJWT(tokenString); err == nil {
		t.Error("expired token was accepted")
	}
}
