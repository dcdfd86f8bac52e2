package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workmate-ai/assistant-be/types"
)

// Answerer answers a sanitized-on-entry chat query.
type Answerer interface {
	AnswerQuery(ctx context.Context, query string) (string, error)
}

type ChatHandler struct {
	pipeline Answerer
}

func NewChatHandler(pipeline Answerer) *ChatHandler {
	return &ChatHandler{pipeline: pipeline}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	response, err := h.pipeline.AnswerQuery(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(statusFor(err), types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   types.ChatResponse{Response: response},
	})
}
