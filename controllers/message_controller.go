package controllers

import (
	"net/http"

	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

// SendMessageRequest represents the request body for posting to a match thread
type SendMessageRequest struct {
	MatchID uint   `json:"match_id" binding:"required"`
	Content string `json:"content"`
}

type MessageController struct {
	messages *services.MessageService
	users    *services.UserService
}

func NewMessageController(messages *services.MessageService, users *services.UserService) *MessageController {
	return &MessageController{messages: messages, users: users}
}

// SendMessage handles POST /api/v1/messages
func (h *MessageController) SendMessage(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	message, err := h.messages.SendMessage(c.Request.Context(), req.MatchID, user.ID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetMessages handles GET /api/v1/messages/match/:matchId
func (h *MessageController) GetMessages(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	matchID, ok := pathID(c, "matchId")
	if !ok {
		return
	}

	messages, err := h.messages.GetMessages(c.Request.Context(), matchID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
