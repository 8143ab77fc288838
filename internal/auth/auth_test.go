package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestOpenWhenUnconfigured(t *testing.T) {
	service := NewService("", "", "secret")

	if service.Enabled() {
		t.Error("expected auth to be disabled with no key configured")
	}
	if err := service.Authorize("", ""); err != nil {
		t.Errorf("expected open access, got %v", err)
	}
}

func TestVerifyPlainKey(t *testing.T) {
	service := NewService("hunter2", "", "secret")

	if err := service.VerifyKey("hunter2"); err != nil {
		t.Errorf("expected valid key to pass, got %v", err)
	}
	if err := service.VerifyKey("wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestHashedKeyTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("real-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	service := NewService("plain-key", string(hash), "secret")

	if err := service.VerifyKey("real-key"); err != nil {
		t.Errorf("expected hashed key to pass, got %v", err)
	}
	if err := service.VerifyKey("plain-key"); !errors.Is(err, ErrInvalidKey) {
		t.Error("plain key must be ignored when a hash is configured")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	service := NewService("hunter2", "", "secret")

	token, err := service.IssueToken("hunter2")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := service.VerifyToken(token); err != nil {
		t.Errorf("expected issued token to verify, got %v", err)
	}

	if _, err := service.IssueToken("wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	issuer := NewService("hunter2", "", "secret-a")
	verifier := NewService("hunter2", "", "secret-b")

	token, err := issuer.IssueToken("hunter2")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := verifier.VerifyToken(token); !errors.Is(err, ErrInvalidKey) {
		t.Error("expected token signed with a different secret to fail")
	}
}

func TestAuthorizeHeaders(t *testing.T) {
	service := NewService("hunter2", "", "secret")
	token, _ := service.IssueToken("hunter2")

	if err := service.Authorize("Bearer "+token, ""); err != nil {
		t.Errorf("bearer token rejected: %v", err)
	}
	if err := service.Authorize("", "hunter2"); err != nil {
		t.Errorf("admin key header rejected: %v", err)
	}
	if err := service.Authorize("", ""); !errors.Is(err, ErrInvalidKey) {
		t.Error("expected missing credentials to be rejected")
	}
}
