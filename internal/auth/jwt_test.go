package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/halipro/api/internal/enum"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewManager("test-secret")
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, enum.UserRoleOwner)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enum.UserRoleOwner {
		t.Errorf("Role = %s, want %s", claims.Role, enum.UserRoleOwner)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	manager := NewManager("test-secret")
	userID := uuid.New()

	token, err := manager.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	got, err := manager.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if got != userID {
		t.Errorf("userID = %s, want %s", got, userID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").GenerateAccessToken(uuid.New(), enum.UserRoleStaff)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := NewManager("secret-b").ValidateAccessToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager := NewManager("test-secret")
	if _, err := manager.ValidateAccessToken("not.a.token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
	if _, err := manager.ValidateRefreshToken(""); err == nil {
		t.Error("expected validation to fail for empty input")
	}
}
