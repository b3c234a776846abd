package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/cortex-chat/pkg/chat"
)

type TurnRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *HTTPServer) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) Index(c *gin.Context) {
	page, err := indexPage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// PostTurn runs one turn. A failed agent call answers 502 with the view so
// the page can still show the error.
func (s *HTTPServer) PostTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view := newTurnView(s.conv.Transcript().ID())
	outcome, err := s.conv.HandleTurn(c.Request.Context(), view, req.Query)
	switch {
	case errors.Is(err, chat.ErrTurnInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, chat.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if outcome.Failed() {
		status = http.StatusBadGateway
	}
	c.JSON(status, view)
}

func (s *HTTPServer) GetTranscript(c *gin.Context) {
	c.JSON(http.StatusOK, newTranscriptView(s.conv.Transcript()))
}

func (s *HTTPServer) NewConversation(c *gin.Context) {
	s.conv.Reset()
	c.JSON(http.StatusOK, newTranscriptView(s.conv.Transcript()))
}
