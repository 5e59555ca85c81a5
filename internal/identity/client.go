package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to the hosted identity provider's REST API. Administrative
// calls (create/update/delete) additionally require the service account
// credential; without it the client refuses them with ErrUnavailable.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	account    *ServiceAccount
}

// ClientOption configures Client behavior.
type ClientOption func(*Client)

// WithServiceAccount enables administrative provider calls.
func WithServiceAccount(sa ServiceAccount) ClientOption {
	return func(c *Client) { c.account = &sa }
}

// WithClientHTTP overrides the HTTP client.
func WithClientHTTP(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrUnavailable)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SupportsAdmin reports whether administrative calls are configured.
func (c *Client) SupportsAdmin() bool { return c.account != nil }

func (c *Client) SignIn(ctx context.Context, email, password string) (Token, error) {
	var resp struct {
		LocalID string `json:"localId"`
		IDToken string `json:"idToken"`
	}
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Token{}, err
	}
	return Token{UID: resp.LocalID, IDToken: resp.IDToken}, nil
}

func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (Record, error) {
	if strings.TrimSpace(idToken) == "" {
		return Record{}, ErrInvalidToken
	}
	var resp struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	if err := c.post(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &resp); err != nil {
		return Record{}, err
	}
	if len(resp.Users) == 0 {
		return Record{}, ErrInvalidToken
	}
	u := resp.Users[0]
	return Record{UID: u.LocalID, Email: u.Email, DisplayName: u.DisplayName}, nil
}

func (c *Client) CreateUser(ctx context.Context, email, password, displayName string) (Record, error) {
	if !c.SupportsAdmin() {
		return Record{}, ErrUnavailable
	}
	var resp struct {
		LocalID string `json:"localId"`
	}
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}, &resp)
	if err != nil {
		return Record{}, err
	}
	return Record{UID: resp.LocalID, Email: email, DisplayName: displayName}, nil
}

func (c *Client) UpdateUser(ctx context.Context, uid string, upd RecordUpdate) error {
	if !c.SupportsAdmin() {
		return ErrUnavailable
	}
	body := map[string]any{"localId": uid}
	if upd.Email != nil {
		body["email"] = *upd.Email
	}
	if upd.Password != nil {
		body["password"] = *upd.Password
	}
	if upd.DisplayName != nil {
		body["displayName"] = *upd.DisplayName
	}
	return c.post(ctx, "accounts:update", body, &struct{}{})
}

func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	if !c.SupportsAdmin() {
		return ErrUnavailable
	}
	return c.post(ctx, "accounts:delete", map[string]any{"localId": uid}, &struct{}{})
}

func (c *Client) post(ctx context.Context, action string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	url := c.baseURL + "/v1/" + action
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeProviderError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// decodeProviderError maps the provider's error codes onto the package
// sentinels so callers can present specific user-facing messages.
func decodeProviderError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	code := payload.Error.Message
	switch {
	case code == "EMAIL_EXISTS":
		return ErrEmailInUse
	case code == "INVALID_EMAIL", code == "MISSING_EMAIL":
		return ErrInvalidEmail
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return ErrWeakPassword
	case code == "EMAIL_NOT_FOUND", code == "INVALID_PASSWORD", code == "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	case strings.HasPrefix(code, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return ErrThrottled
	case code == "INVALID_ID_TOKEN", code == "TOKEN_EXPIRED":
		return ErrInvalidToken
	case code == "USER_NOT_FOUND":
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s (status %d)", ErrUnavailable, code, resp.StatusCode)
}
