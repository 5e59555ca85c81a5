package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager("test-secret")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, expiresAt, err := m.Issue("uid-42", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if until := time.Until(expiresAt); until < DefaultTTL-time.Minute || until > DefaultTTL {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	uid, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if uid != "uid-42" {
		t.Fatalf("unexpected subject: %s", uid)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	m, err := NewManager("test-secret", WithClock(now))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, _, err := m.Issue("uid-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock = clock.Add(2 * time.Hour)
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	a, _ := NewManager("secret-a")
	b, _ := NewManager("secret-b")

	token, _, err := a.Issue("uid-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := a.Verify("not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestCookieRoundTrip(t *testing.T) {
	m, _ := NewManager("test-secret", WithSecureCookies(true))
	token, expiresAt, err := m.Issue("uid-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr := httptest.NewRecorder()
	m.SetCookie(rr, token, expiresAt)
	res := rr.Result()
	cookies := res.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cookie attributes: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	raw, ok := FromRequest(req)
	if !ok || raw != token {
		t.Fatal("cookie did not round-trip")
	}

	rr2 := httptest.NewRecorder()
	m.ClearCookie(rr2)
	cleared := rr2.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Fatal("expected expired cookie")
	}
}
