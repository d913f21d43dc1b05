package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"godash/app"
	"godash/domain/core"
	"godash/ui/middleware"
)

// handleSaveDashboard freezes an analysis result as a named snapshot.
func (s *Server) handleSaveDashboard(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Config.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dashboard config must contain at least one chart, table or metric"})
		return
	}

	snapshot, err := s.dashboards.Save(c.Request.Context(), app.SaveDashboardRequest{
		UserID:         core.UserID(userID.String()),
		Title:          req.Title,
		DatasetName:    req.DatasetName,
		DatasetColumns: req.DatasetColumns,
		Config:         req.Config,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// handleListDashboards returns the caller's saved dashboards, newest first.
func (s *Server) handleListDashboards(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snapshots, err := s.dashboards.List(c.Request.Context(), core.UserID(userID.String()))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dashboardListItem, 0, len(snapshots))
	for _, snapshot := range snapshots {
		items = append(items, newDashboardListItem(snapshot))
	}
	c.JSON(http.StatusOK, gin.H{"dashboards": items})
}

func (s *Server) handleGetDashboard(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dashboardID, err := core.ParseDashboardID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dashboard id is required"})
		return
	}

	snapshot, err := s.dashboards.Get(c.Request.Context(), dashboardID, core.UserID(userID.String()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleDeleteDashboard(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dashboardID, err := core.ParseDashboardID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dashboard id is required"})
		return
	}

	if err := s.dashboards.Delete(c.Request.Context(), dashboardID, core.UserID(userID.String())); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExportDashboard streams a snapshot as an Excel workbook. The body is
// buffered first so an export failure still yields a JSON error instead of a
// truncated file.
func (s *Server) handleExportDashboard(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dashboardID, err := core.ParseDashboardID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dashboard id is required"})
		return
	}

	var buf bytes.Buffer
	snapshot, err := s.dashboards.ExportXLSX(c.Request.Context(), dashboardID, core.UserID(userID.String()), &buf)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := exportFilename(snapshot.Title) + s.exporter.FileExtension()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, s.exporter.ContentType(), buf.Bytes())
}

// exportFilename turns a snapshot title into a safe download name stem.
func exportFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(title))
	if name == "" {
		name = "dashboard"
	}
	return name
}
