package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"godash/ui/middleware"
)

// handleCreateSession signs the caller in anonymously and returns the token
// the rest of the API expects.
func (s *Server) handleCreateSession(c *gin.Context) {
	session, err := s.sessions.SignInAnonymously(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// handleCurrentUser resolves the account behind the presented token.
func (s *Server) handleCurrentUser(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := s.sessions.Resume(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
