package httpapi

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"chatdesk.org/internal/chat"
)

func createConversation(t *testing.T, c *apiClient) chat.Conversation {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/conversations", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create conversation: unexpected status %d", resp.StatusCode)
	}
	return decodeBody[chat.Conversation](t, resp)
}

func TestConversationRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.login("user@example.com", "password")

	conv := createConversation(t, c)
	if conv.ID == "" {
		t.Fatal("expected conversation id")
	}
	if conv.Title != "Conversation "+conv.ID {
		t.Fatalf("unexpected default title: %q", conv.Title)
	}
	if len(conv.Messages) != 0 {
		t.Fatalf("expected empty message list, got %d", len(conv.Messages))
	}
	created := conv.LastMessageDate

	resp := c.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", map[string]any{
		"content": "hola",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send message: unexpected status %d", resp.StatusCode)
	}
	conv = decodeBody[chat.Conversation](t, resp)

	if len(conv.Messages) != 2 {
		t.Fatalf("expected user + bot messages, got %d", len(conv.Messages))
	}
	userMsg, botMsg := conv.Messages[0], conv.Messages[1]
	if userMsg.Content != "hola" || !userMsg.IsUser {
		t.Fatalf("unexpected user message: %+v", userMsg)
	}
	if userMsg.SenderName != "Ulya" {
		t.Fatalf("unexpected sender name: %q", userMsg.SenderName)
	}
	if botMsg.Content != "beep" || botMsg.IsUser {
		t.Fatalf("unexpected bot message: %+v", botMsg)
	}
	if botMsg.SenderID != "bot" || botMsg.SenderName != "Chatbot" {
		t.Fatalf("unexpected bot sender: %+v", botMsg)
	}
	if conv.LastMessageDate.Before(created) {
		t.Fatal("lastMessageDate went backwards")
	}
	if !conv.LastMessageDate.Equal(botMsg.Timestamp) {
		t.Fatalf("lastMessageDate %v does not match final message %v",
			conv.LastMessageDate, botMsg.Timestamp)
	}

	// Fetch it back
	resp = c.get("/api/conversations/"+conv.ID, nil)
	fetched := decodeBody[chat.Conversation](t, resp)
	if len(fetched.Messages) != 2 {
		t.Fatalf("expected persisted messages, got %d", len(fetched.Messages))
	}
}

func TestListConversationsOwnOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.login("user@example.com", "password")
	admin := env.login("admin@example.com", "adminpass")

	mine := createConversation(t, user)
	createConversation(t, admin)

	resp := user.get("/api/conversations", nil)
	body := decodeBody[struct {
		Conversations []chat.Conversation `json:"conversations"`
	}](t, resp)
	if len(body.Conversations) != 1 || body.Conversations[0].ID != mine.ID {
		t.Fatalf("expected only own conversation, got %+v", body.Conversations)
	}
}

func TestListAllRequiresPrivilege(t *testing.T) {
	env := newTestEnv(t)
	user := env.login("user@example.com", "password")
	admin := env.login("admin@example.com", "adminpass")

	createConversation(t, user)
	createConversation(t, admin)

	params := url.Values{"all": {"1"}}
	resp := user.get("/api/conversations", params)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user, got %d", resp.StatusCode)
	}

	resp = admin.get("/api/conversations", params)
	body := decodeBody[struct {
		Conversations []chat.Conversation `json:"conversations"`
	}](t, resp)
	if len(body.Conversations) != 2 {
		t.Fatalf("expected every conversation, got %d", len(body.Conversations))
	}
}

func TestForeignConversationForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login("user@example.com", "password")
	conv := createConversation(t, owner)

	// Admins may read any conversation; a second plain user may not.
	super := env.login("super@example.com", "superpass")
	resp := super.get("/api/conversations/"+conv.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("privileged read: expected 200, got %d", resp.StatusCode)
	}

	resp = createSecondUserAndGet(t, env, conv.ID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// createSecondUserAndGet provisions another plain account through the admin
// API and reads the conversation with it.
func createSecondUserAndGet(t *testing.T, env *testEnv, convID string) *http.Response {
	t.Helper()
	admin := env.login("super@example.com", "superpass")
	resp := admin.do(http.MethodPost, "/api/admin/createUser", map[string]any{
		"name":     "Second",
		"email":    "second@example.com",
		"password": "password2",
		"role":     "User",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("provision second user: status %d", resp.StatusCode)
	}
	second := env.login("second@example.com", "password2")
	return second.get("/api/conversations/"+convID, nil)
}

func TestRenameConversation(t *testing.T) {
	env := newTestEnv(t)
	c := env.login("user@example.com", "password")
	conv := createConversation(t, c)

	resp := c.do(http.MethodPut, "/api/conversations/"+conv.ID+"/title", map[string]any{
		"title": "Printer trouble",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: unexpected status %d", resp.StatusCode)
	}

	resp = c.do(http.MethodPut, "/api/conversations/"+conv.ID+"/title", map[string]any{
		"title": "",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty title: expected 400, got %d", resp.StatusCode)
	}

	resp = c.get("/api/conversations/"+conv.ID, nil)
	fetched := decodeBody[chat.Conversation](t, resp)
	if fetched.Title != "Printer trouble" {
		t.Fatalf("unexpected title: %q", fetched.Title)
	}
}

func TestDeleteConversation(t *testing.T) {
	env := newTestEnv(t)
	c := env.login("user@example.com", "password")
	conv := createConversation(t, c)

	resp := c.do(http.MethodDelete, "/api/conversations/"+conv.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: unexpected status %d", resp.StatusCode)
	}

	resp = c.get("/api/conversations/"+conv.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestMissingConversation(t *testing.T) {
	env := newTestEnv(t)
	c := env.login("user@example.com", "password")

	resp := c.do(http.MethodPost, "/api/conversations/ghost/messages", map[string]any{
		"content": "anyone there",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMessageTimestampsAdvance(t *testing.T) {
	env := newTestEnv(t)
	c := env.login("user@example.com", "password")
	conv := createConversation(t, c)

	resp := c.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", map[string]any{
		"content": "first",
	})
	first := decodeBody[chat.Conversation](t, resp)

	time.Sleep(5 * time.Millisecond)

	resp = c.do(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", map[string]any{
		"content": "second",
	})
	second := decodeBody[chat.Conversation](t, resp)

	if !second.LastMessageDate.After(first.LastMessageDate) {
		t.Fatalf("lastMessageDate did not advance: %v then %v",
			first.LastMessageDate, second.LastMessageDate)
	}
	if len(second.Messages) != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", len(second.Messages))
	}
}
