package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"awning-admin-api/internal/models"
	"awning-admin-api/internal/services"
	"awning-admin-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// auditFilterFromQuery parses the shared audit read parameters. Dates are
// YYYY-MM-DD; the To date is extended to the end of its day so a same-day
// range matches.
func auditFilterFromQuery(c *gin.Context) models.AuditFilter {
	filter := models.AuditFilter{
		Action:     c.Query("action"),
		Search:     c.Query("search"),
		EntityType: c.Query("entityType"),
	}

	if from, err := utils.ParseDate(c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := utils.ParseDate(c.Query("to")); err == nil {
		endOfDay := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &endOfDay
	}
	if userID, err := strconv.ParseInt(c.Query("userId"), 10, 64); err == nil {
		filter.UserID = userID
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		filter.PageSize = pageSize
	}

	return filter
}

// GetAuditLogHandler handles GET /api/audit
func (h *Handlers) GetAuditLogHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	page, err := h.audit.LoadAuditPage(ctx, auditFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// ExportAuditCSVHandler handles GET /api/audit/export. Only the requested
// page is exported, matching what the caller has loaded on screen.
func (h *Handlers) ExportAuditCSVHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	page, err := h.audit.LoadAuditPage(ctx, auditFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}

	data, err := services.ExportAuditCSV(page.Entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export audit log"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="audit-log.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// GetTaskHistoryHandler handles GET /api/tasks/:id/history
func (h *Handlers) GetTaskHistoryHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	filter := auditFilterFromQuery(c)
	filter.TaskID = id

	page, err := h.audit.LoadTaskHistoryPage(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task history"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// ExportTaskHistoryCSVHandler handles GET /api/tasks/:id/history/export
func (h *Handlers) ExportTaskHistoryCSVHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	filter := auditFilterFromQuery(c)
	filter.TaskID = id

	page, err := h.audit.LoadTaskHistoryPage(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task history"})
		return
	}

	data, err := services.ExportTaskHistoryCSV(page.Entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export task history"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="task-`+strconv.FormatInt(id, 10)+`-history.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// GenerateFollowUpsHandler handles POST /api/follow-ups/generate. Runs the
// stale-enquiry sweep immediately and returns the open follow-ups.
func (h *Handlers) GenerateFollowUpsHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	followUps, err := h.followUps.GenerateAndList(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate follow-ups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"followUps": followUps})
}

// MarkFollowUpDoneHandler handles PUT /api/follow-ups/:id/done
func (h *Handlers) MarkFollowUpDoneHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.followUps.MarkDone(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("follow_up", id, "update", userID, userName, "marked done")

	c.JSON(http.StatusOK, gin.H{"id": id, "done": true})
}
