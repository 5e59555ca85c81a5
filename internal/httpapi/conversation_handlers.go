package httpapi

import (
	"net/http"
	"strings"

	"chatdesk.org/internal/audit"
	"chatdesk.org/internal/chat"
	"chatdesk.org/internal/directory"
	"chatdesk.org/internal/stream"
)

type renameRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (a *API) handleConversationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listConversations(w, r)
	case http.MethodPost:
		a.createConversation(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listConversations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var (
		convs []chat.Conversation
		err   error
	)
	if r.URL.Query().Get("all") == "1" {
		if !actor.Role.Privileged() {
			writeError(w, r, http.StatusForbidden, "admin access required")
			return
		}
		convs, err = a.chats.ListAll(r.Context())
	} else {
		convs, err = a.chats.ListForUser(r.Context(), actor.ID, actor.Role)
	}
	if err != nil {
		handleChatError(w, r, err)
		return
	}
	if convs == nil {
		convs = []chat.Conversation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

func (a *API) createConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	conv, err := a.chats.Create(r.Context(), actor.ID)
	if err != nil {
		handleChatError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "conversation.create", map[string]any{
		"conversation": conv.ID,
	})
	w.Header().Set("Location", "/api/conversations/"+conv.ID)
	writeJSON(w, http.StatusCreated, conv)
}

func (a *API) handleConversationResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/conversations/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			a.getConversation(w, r, actor, id)
		case http.MethodDelete:
			a.deleteConversation(w, r, actor, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "title":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		a.renameConversation(w, r, actor, id)
	case len(parts) == 2 && parts[1] == "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.sendMessage(w, r, actor, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// canAccess gates one conversation: the owner, or any privileged role.
func canAccess(actor directory.User, conv chat.Conversation) bool {
	return conv.UserID == actor.ID || actor.Role.Privileged()
}

func (a *API) getConversation(w http.ResponseWriter, r *http.Request, actor directory.User, id string) {
	conv, err := a.chats.Get(r.Context(), id)
	if err != nil {
		handleChatError(w, r, err)
		return
	}
	if !canAccess(actor, conv) {
		writeError(w, r, http.StatusForbidden, "not your conversation")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (a *API) renameConversation(w http.ResponseWriter, r *http.Request, actor directory.User, id string) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	conv, err := a.chats.Get(r.Context(), id)
	if err != nil {
		handleChatError(w, r, err)
		return
	}
	if !canAccess(actor, conv) {
		writeError(w, r, http.StatusForbidden, "not your conversation")
		return
	}
	if err := a.chats.Rename(r.Context(), id, req.Title); err != nil {
		handleChatError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request, actor directory.User, id string) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	conv, err := a.chats.Get(r.Context(), id)
	if err != nil {
		handleChatError(w, r, err)
		return
	}
	if !canAccess(actor, conv) {
		writeError(w, r, http.StatusForbidden, "not your conversation")
		return
	}

	conv, err = a.chats.SendMessage(r.Context(), id, actor.ID, actor.Name, req.Content)
	if err != nil {
		handleChatError(w, r, err)
		return
	}

	if a.stream != nil {
		for _, msg := range lastMessages(conv, 2) {
			a.stream.Publish(stream.MessageEvent{
				ConversationID: conv.ID,
				MessageID:      msg.ID,
				SenderID:       msg.SenderID,
				IsUser:         msg.IsUser,
				Timestamp:      msg.Timestamp,
			})
		}
	}
	writeJSON(w, http.StatusOK, conv)
}

func (a *API) deleteConversation(w http.ResponseWriter, r *http.Request, actor directory.User, id string) {
	conv, err := a.chats.Get(r.Context(), id)
	if err != nil {
		handleChatError(w, r, err)
		return
	}
	if !canAccess(actor, conv) {
		writeError(w, r, http.StatusForbidden, "not your conversation")
		return
	}
	if err := a.chats.Delete(r.Context(), id); err != nil {
		handleChatError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "conversation.delete", map[string]any{
		"conversation": id,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func lastMessages(conv chat.Conversation, n int) []chat.Message {
	if len(conv.Messages) <= n {
		return conv.Messages
	}
	return conv.Messages[len(conv.Messages)-n:]
}
