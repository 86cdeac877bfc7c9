package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/loophq/go-chat-server/chat"
	"github.com/loophq/go-chat-server/directory"
	"github.com/loophq/go-chat-server/internal/utils"
	"github.com/loophq/go-chat-server/messages"
)

const defaultHistoryLimit = 50

type sendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
	ProjectID   *int64 `json:"projectId,omitempty"`
}

// SendMessageHandler is the synchronous send path: it persists the message to
// the durable store first, then pushes a new_message event to the recipient's
// live connection if there is one. Whether the push landed does not change
// the response; delivery over the stream is best-effort.
func (s *Server) SendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "invalid token"})
			return
		}

		var request sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "invalid request body"})
			return
		}
		if request.RecipientID == "" || request.Body == "" {
			writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "recipientId and body are required"})
			return
		}

		recipientOK, err := s.repos.Users.Exists(request.RecipientID, claims.TenantID)
		if err != nil {
			log.Err(err).Msg("recipient lookup failed")
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "failed to send message"})
			return
		}
		if !recipientOK {
			writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "recipient not found or access denied"})
			return
		}

		sender, err := s.repos.Users.GetByID(claims.UserID)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "invalid token"})
			return
		}

		message := messages.New(claims.TenantID, request.ProjectID, sender.ID, request.RecipientID, request.Body, s.coordinator.Now())
		if err := s.store.Append(r.Context(), message); err != nil {
			log.Err(err).Msg("message persistence failed")
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "failed to send message"})
			return
		}

		messageData := newMessagePayload(message, sender)
		s.coordinator.PushToUser(request.RecipientID, chat.EventNewMessage, messageData)

		writeJSON(w, http.StatusCreated, apiResponse{
			Success: true,
			Message: "message sent successfully",
			Data:    messageData,
		})
	}
}

// ChatHistoryHandler returns the conversation between the caller and the
// given recipient, oldest first. Pure store read; the registry is not
// consulted.
func (s *Server) ChatHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "invalid token"})
			return
		}

		query := r.URL.Query()
		recipientID := query.Get("recipientId")
		if recipientID == "" {
			writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "recipientId is required"})
			return
		}

		var projectID *int64
		if rawProject := query.Get("projectId"); rawProject != "" {
			parsed, err := strconv.ParseInt(rawProject, 10, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "projectId must be an integer"})
				return
			}
			projectID = utils.Ptr(parsed)
		}
		limit := queryInt(query.Get("limit"), defaultHistoryLimit)
		offset := queryInt(query.Get("offset"), 0)

		recipientOK, err := s.repos.Users.Exists(recipientID, claims.TenantID)
		if err != nil {
			log.Err(err).Msg("recipient lookup failed")
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "failed to retrieve chat history"})
			return
		}
		if !recipientOK {
			writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "recipient not found or access denied"})
			return
		}

		conversation, err := s.store.History(r.Context(), claims.TenantID, claims.UserID, recipientID, projectID, limit, offset)
		if err != nil {
			log.Err(err).Msg("history read failed")
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "failed to retrieve chat history"})
			return
		}

		senders := s.conversationSenders(claims.UserID, recipientID)

		data := make([]chat.NewMessagePayload, 0, len(conversation))
		for _, message := range conversation {
			data = append(data, newMessagePayload(message, senders[message.FromUser]))
		}
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Message: "chat history retrieved successfully",
			Data:    data,
		})
	}
}

// OnlineUsersHandler lists every member of the caller's tenant with a flag
// for whether they currently hold a live connection.
func (s *Server) OnlineUsersHandler() http.HandlerFunc {
	type memberStatus struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Online      bool   `json:"online"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "invalid token"})
			return
		}

		members, err := s.repos.Users.ListByTenant(claims.TenantID, 0, 0)
		if err != nil {
			log.Err(err).Msg("tenant member listing failed")
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "failed to retrieve online users"})
			return
		}

		online := make(map[string]struct{})
		for _, userID := range s.coordinator.OnlineUserIDs() {
			online[userID] = struct{}{}
		}

		data := make([]memberStatus, 0, len(members))
		for _, member := range members {
			_, isOnline := online[member.ID]
			data = append(data, memberStatus{
				ID:          member.ID,
				Email:       member.Email,
				DisplayName: member.DisplayName,
				Online:      isOnline,
			})
		}
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Message: "online users retrieved successfully",
			Data:    data,
		})
	}
}

// conversationSenders resolves both conversation participants for history
// enrichment. A participant deleted from the directory appears with a bare ID.
func (s *Server) conversationSenders(userA, userB string) map[string]*directory.User {
	senders := make(map[string]*directory.User, 2)
	for _, userID := range []string{userA, userB} {
		user, err := s.repos.Users.GetByID(userID)
		if err != nil {
			senders[userID] = &directory.User{ID: userID}
			continue
		}
		senders[userID] = user
	}
	return senders
}

func newMessagePayload(message *messages.Message, sender *directory.User) chat.NewMessagePayload {
	return chat.NewMessagePayload{
		ID: message.ID,
		From: chat.UserRef{
			ID:          sender.ID,
			Email:       sender.Email,
			DisplayName: sender.DisplayName,
		},
		RecipientID: message.RecipientID,
		Body:        message.Body,
		ProjectID:   message.ProjectID,
		CreatedAt:   message.CreatedAt,
	}
}

func queryInt(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
