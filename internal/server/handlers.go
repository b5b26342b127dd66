package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DaanHessen/jwtviz/internal/narration"
)

type narrationResponse struct {
	Step      int    `json:"step"`
	Narration string `json:"narration"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) registerRoutes(r *gin.Engine) {
	health := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	r.GET("/health", health)
	r.HEAD("/health", health)

	api := r.Group("/api")
	api.GET("/narration/:step", s.getNarration)
	api.POST("/chat", s.postChat)
	api.GET("/token/sample", s.getSampleToken)
}

func (s *Server) getNarration(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Step not found"})
		return
	}
	text, err := s.svc.Narration(c.Request.Context(), step)
	switch {
	case errors.Is(err, narration.ErrStepNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Step not found"})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	default:
		c.JSON(http.StatusOK, narrationResponse{Step: step, Narration: text})
	}
}

func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Debug("Rejected chat body", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	c.JSON(http.StatusOK, chatResponse{Answer: s.svc.Ask(req.Message)})
}

func (s *Server) getSampleToken(c *gin.Context) {
	tok, err := s.svc.SampleToken()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, tok)
}
