package handler

import (
	"encoding/json"
	"net/http"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/service"
)

// ChatHandler handles the goal-setting dialogue
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// GoalChat sends a message and saves the goals once the conversation is complete
// @Summary Goal chat turn
// @Description Send one message to the goal-setting assistant; a complete conversation is saved as a goal hierarchy
// @Tags chat
// @Accept json
// @Produce json
// @Param request body object{content=string,userId=string,conversationId=string,inputs=object} true "Chat message"
// @Success 200 {object} entity.GoalChatResult
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string,retryable=bool}
// @Router /api/goal-chat [post]
func (h *ChatHandler) GoalChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Content        string         `json:"content"`
		UserID         string         `json:"userId"`
		ConversationID string         `json:"conversationId"`
		Inputs         map[string]any `json:"inputs"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.chatService.SendMessageAndCheckCompletion(r.Context(), &entity.ChatRequest{
		Query:          req.Content,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Inputs:         req.Inputs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SendMessage forwards a message to the assistant
// @Summary Send chat message
// @Description Pass one message through to the conversation service
// @Tags chat
// @Accept json
// @Produce json
// @Param request body entity.ChatRequest true "Chat message"
// @Success 200 {object} entity.ChatReply
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/dify [post]
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.chatService.SendMessage(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// CheckCompletion reports which goal variables a conversation still lacks
// @Summary Check conversation completion
// @Tags chat
// @Accept json
// @Produce json
// @Param request body object{conversationId=string,userId=string} true "Conversation"
// @Success 200 {object} entity.CompletionResult
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/dify/check-completion [post]
func (h *ChatHandler) CheckCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ConversationID string `json:"conversationId"`
		UserID         string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ConversationID == "" {
		writeError(w, apperror.NewValidationError("conversationId", "is required"))
		return
	}

	result, err := h.chatService.CheckCompletion(r.Context(), req.ConversationID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SaveGoals saves the goal hierarchy of a complete conversation
// @Summary Save goals from conversation
// @Tags goals
// @Accept json
// @Produce json
// @Param request body object{userId=string,conversationId=string} true "Conversation"
// @Success 200 {object} object{result=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string,retryable=bool}
// @Router /api/save-goals [post]
func (h *ChatHandler) SaveGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID         string `json:"userId"`
		ConversationID string `json:"conversationId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.chatService.SaveGoalsFromConversation(r.Context(), req.UserID, req.ConversationID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": "success",
	})
}
