package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careloop/medassist/internal/application/assistant"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/pkg/errors"
)

// AssistantHandler exposes the conversational endpoints.
type AssistantHandler struct {
	svc           assistant.Service
	conversations assistant.ConversationStore
	logger        logging.Logger
}

// NewAssistantHandler builds the handler. conversations may be nil, in which
// case the history endpoint reports not found.
func NewAssistantHandler(svc assistant.Service, conversations assistant.ConversationStore, logger logging.Logger) *AssistantHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AssistantHandler{svc: svc, conversations: conversations, logger: logger}
}

// RegisterRoutes mounts the assistant endpoints on the given group.
func (h *AssistantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users/:userID/messages", h.Message)
	rg.GET("/users/:userID/conversation", h.History)
	rg.POST("/users/:userID/conflicts", h.CheckConflicts)
	rg.POST("/parse", h.Parse)
}

type messageBody struct {
	Text string `json:"text" binding:"required"`
}

// Message runs the assistant pipeline for one utterance.
func (h *AssistantHandler) Message(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.svc.HandleMessage(c.Request.Context(), &assistant.MessageRequest{
		UserID: userID,
		Text:   body.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns the user's recent conversation turns, newest first.
func (h *AssistantHandler) History(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	if h.conversations == nil {
		respondError(c, errors.New(errors.ErrCodeConversationNotFound, "conversation history is not available"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	turns, err := h.conversations.History(c.Request.Context(), userID.String(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

type conflictBody struct {
	Candidate string `json:"candidate" binding:"required"`
}

// CheckConflicts runs conflict detection for a candidate medication name.
func (h *AssistantHandler) CheckConflicts(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var body conflictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	warnings, err := h.svc.CheckCandidate(c.Request.Context(), userID, body.Candidate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings})
}

type parseBody struct {
	Text string `json:"text" binding:"required"`
}

// Parse extracts structured medication candidates for form pre-fill.
func (h *AssistantHandler) Parse(c *gin.Context) {
	var body parseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medications": h.svc.ParseForForm(c.Request.Context(), body.Text),
	})
}
