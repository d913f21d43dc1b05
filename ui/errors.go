package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"godash/domain/core"
)

// respondError maps domain errors onto HTTP statuses: ingestion problems are
// the client's fault, upstream problems the model's, the rest ours. Internal
// detail stays in the log, not the response.
func respondError(c *gin.Context, err error) {
	switch {
	case core.IsIngestionError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case core.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case core.IsUpstreamError(err):
		log.Warn().Err(err).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case core.IsPersistenceError(err):
		log.Error().Err(err).Msg("persistence failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		log.Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
