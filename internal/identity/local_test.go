package identity

import (
	"context"
	"errors"
	"testing"
)

func TestLocalSignInFlow(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	rec, err := l.CreateUser(ctx, "User@Example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if rec.Email != "user@example.com" {
		t.Fatalf("email not normalised: %s", rec.Email)
	}

	tok, err := l.SignIn(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if tok.UID != rec.UID {
		t.Fatalf("uid mismatch: %s vs %s", tok.UID, rec.UID)
	}

	got, err := l.VerifyIDToken(ctx, tok.IDToken)
	if err != nil {
		t.Fatalf("VerifyIDToken: %v", err)
	}
	if got.UID != rec.UID || got.DisplayName != "Ana" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := l.SignIn(ctx, "user@example.com", "wrong-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := l.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLocalValidation(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	if _, err := l.CreateUser(ctx, "not-an-email", "secret1", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := l.CreateUser(ctx, "a@example.com", "pw", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := l.CreateUser(ctx, "a@example.com", "secret1", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := l.CreateUser(ctx, "a@example.com", "secret2", ""); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestLocalDeleteRevokesTokens(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	rec, err := l.CreateUser(ctx, "a@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	tok, err := l.SignIn(ctx, "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := l.DeleteUser(ctx, rec.UID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := l.VerifyIDToken(ctx, tok.IDToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	if err := l.DeleteUser(ctx, rec.UID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
