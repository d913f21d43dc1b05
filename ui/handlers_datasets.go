package ui

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"godash/domain/core"
	"godash/ui/middleware"
)

// handleUploadDataset parses a multipart CSV or JSON upload, profiles it and
// caches it for analysis. Records never touch disk or the database.
func (s *Server) handleUploadDataset(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `no dataset file in request (field "dataset")`})
		return
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file size %d bytes exceeds the %d byte limit", header.Size, s.maxUpload),
		})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	ds, err := s.reader.Parse(content, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	ds.OwnerID = core.UserID(userID.String())
	s.datasets.Put(ds)

	log.Info().
		Str("dataset", ds.Name).
		Str("fingerprint", ds.Fingerprint.Short()).
		Int("records", ds.RecordCount()).
		Int("columns", len(ds.Columns)).
		Msg("dataset cached")

	c.JSON(http.StatusCreated, newDatasetResponse(ds, s.profiler.Profile(ds)))
}

// handleAnalyzeDataset runs the dashboard pipeline against a cached upload.
func (s *Server) handleAnalyzeDataset(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	datasetID, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dataset id is required"})
		return
	}

	result, err := s.analyses.Analyze(c.Request.Context(), core.UserID(userID.String()), datasetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
