package utils

import (
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	os.Exit(m.Run())
}

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "user@test.com", "customer")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@test.com" {
		t.Errorf("Expected email user@test.com, got %s", claims.Email)
	}
	if claims.Role != "customer" {
		t.Errorf("Expected role customer, got %s", claims.Role)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Fatalf("Expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "user@test.com", "customer")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	os.Setenv("JWT_SECRET", "a-different-secret")
	defer os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("Expected error for token signed with another secret")
	}
}
