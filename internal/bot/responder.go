package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"chatdesk.org/internal/obs"
)

const (
	// DefaultEndpoint serves one random joke per request as {"joke": "..."}.
	DefaultEndpoint = "https://icanhazdadjoke.com/"

	// Fallback is appended whenever the external fetch fails in any way.
	Fallback = "Sorry, I could not come up with a reply right now."

	defaultTimeout = 5 * time.Second
)

// Responder fetches one line of text from an external joke API. A single
// bounded attempt is made per reply; every failure mode (dial error, non-2xx
// status, malformed body, empty joke) degrades to the fixed fallback string.
// Reply never returns an error.
type Responder struct {
	client   *http.Client
	endpoint string
}

// Option configures Responder behavior.
type Option func(*Responder)

// WithEndpoint overrides the joke API URL.
func WithEndpoint(url string) Option {
	return func(r *Responder) {
		if strings.TrimSpace(url) != "" {
			r.endpoint = url
		}
	}
}

// WithHTTPClient overrides the HTTP client (and with it the attempt bound).
func WithHTTPClient(client *http.Client) Option {
	return func(r *Responder) {
		if client != nil {
			r.client = client
		}
	}
}

func New(opts ...Option) *Responder {
	r := &Responder{
		client:   &http.Client{Timeout: defaultTimeout},
		endpoint: DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type jokeResponse struct {
	Joke string `json:"joke"`
}

// Reply returns one generated line of text, or the fallback.
func (r *Responder) Reply(ctx context.Context) string {
	text, err := r.fetch(ctx)
	if err != nil {
		obs.Log("warn", "bot_reply_fallback", map[string]any{"error": err.Error()})
		obs.CountBotReply("fallback")
		return Fallback
	}
	obs.CountBotReply("fetched")
	return text
}

func (r *Responder) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{code: resp.StatusCode}
	}

	var payload jokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Joke) == "" {
		return "", errEmptyJoke
	}
	return payload.Joke, nil
}
