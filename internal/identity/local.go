package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength mirrors the hosted provider's weak-password rule.
const minPasswordLength = 6

type localAccount struct {
	uid         string
	email       string
	displayName string
	hash        []byte
}

// Local is an in-process Provider used in development mode and tests.
// Passwords are stored as bcrypt hashes; ID tokens are opaque one-shot
// handles resolved in memory.
type Local struct {
	mu      sync.RWMutex
	byUID   map[string]*localAccount
	byEmail map[string]string
	tokens  map[string]string
	cost    int
}

func NewLocal() *Local {
	return &Local{
		byUID:   make(map[string]*localAccount),
		byEmail: make(map[string]string),
		tokens:  make(map[string]string),
		cost:    bcrypt.MinCost,
	}
}

func (l *Local) SignIn(ctx context.Context, email, password string) (Token, error) {
	email = normalizeEmail(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	uid, ok := l.byEmail[email]
	if !ok {
		return Token{}, ErrInvalidCredentials
	}
	acct := l.byUID[uid]
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return Token{}, ErrInvalidCredentials
	}
	tok := randomToken()
	l.tokens[tok] = uid
	return Token{UID: uid, IDToken: tok}, nil
}

func (l *Local) VerifyIDToken(ctx context.Context, idToken string) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	uid, ok := l.tokens[idToken]
	if !ok {
		return Record{}, ErrInvalidToken
	}
	acct := l.byUID[uid]
	return Record{UID: acct.uid, Email: acct.email, DisplayName: acct.displayName}, nil
}

func (l *Local) CreateUser(ctx context.Context, email, password, displayName string) (Record, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return Record{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return Record{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byEmail[email]; ok {
		return Record{}, ErrEmailInUse
	}
	acct := &localAccount{
		uid:         "local-" + randomToken()[:12],
		email:       email,
		displayName: displayName,
		hash:        hash,
	}
	l.byUID[acct.uid] = acct
	l.byEmail[email] = acct.uid
	return Record{UID: acct.uid, Email: acct.email, DisplayName: acct.displayName}, nil
}

func (l *Local) UpdateUser(ctx context.Context, uid string, upd RecordUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if !strings.Contains(email, "@") {
			return ErrInvalidEmail
		}
		if existing, ok := l.byEmail[email]; ok && existing != uid {
			return ErrEmailInUse
		}
		delete(l.byEmail, acct.email)
		acct.email = email
		l.byEmail[email] = uid
	}
	if upd.Password != nil {
		if len(*upd.Password) < minPasswordLength {
			return ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), l.cost)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		acct.hash = hash
	}
	if upd.DisplayName != nil {
		acct.displayName = *upd.DisplayName
	}
	return nil
}

func (l *Local) DeleteUser(ctx context.Context, uid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	delete(l.byEmail, acct.email)
	delete(l.byUID, uid)
	for tok, owner := range l.tokens {
		if owner == uid {
			delete(l.tokens, tok)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func randomToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
