package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestEventsRequirePrivilege(t *testing.T) {
	env := newTestEnv(t)
	user := env.login("user@example.com", "password")

	resp := user.get("/api/admin/events", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestEventsStreamDeliversMessageEvents(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login("admin@example.com", "adminpass")
	user := env.login("user@example.com", "password")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.baseURL+"/api/admin/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := admin.client.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	// Initial comment establishes the stream.
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read initial comment: %v", err)
	}
	if !strings.HasPrefix(line, ":") {
		t.Fatalf("expected comment line, got %q", line)
	}

	conv := createConversation(t, user)
	go func() {
		r := user.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", map[string]any{
			"content": "ping",
		})
		r.Body.Close()
	}()

	var data string
	for {
		line, err = reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}
	if !strings.Contains(data, conv.ID) {
		t.Fatalf("event does not reference the conversation: %q", data)
	}
}
