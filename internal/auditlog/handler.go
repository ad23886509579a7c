package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAuditLogs handles GET /auditlogs - retrieves audit logs with filtering and pagination
// @Summary Get audit logs
// @Description Audit trail of the organizer's own actions and guest actions on their invitations
// @Tags AuditLog
// @Produce json
// @Security BearerAuth
// @Param invitation_id query string false "Filter by invitation ID"
// @Param action query string false "Filter by action"
// @Param status query string false "Filter by status"
// @Param from_date query string false "Filter from date (YYYY-MM-DD)"
// @Param to_date query string false "Filter to date (YYYY-MM-DD)"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Number of records per page (default: 20)"
// @Success 200 {object} PaginatedAuditLogs
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auditlogs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	filter := AuditLogFilter{
		OwnerID:      c.GetUint("user_id"),
		InvitationID: c.Query("invitation_id"),
		Action:       c.Query("action"),
		Status:       c.Query("status"),
	}

	if fromDateStr := c.Query("from_date"); fromDateStr != "" {
		fromDate, err := time.Parse("2006-01-02", fromDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from_date format. Use YYYY-MM-DD"})
			return
		}
		filter.FromDate = &fromDate
	}

	if toDateStr := c.Query("to_date"); toDateStr != "" {
		toDate, err := time.Parse("2006-01-02", toDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to_date format. Use YYYY-MM-DD"})
			return
		}
		// Set to end of day
		endOfDay := toDate.Add(24*time.Hour - time.Second)
		filter.ToDate = &endOfDay
	}

	filter.Page = 1
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}

	filter.Limit = 20
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		filter.Limit = limit
	}

	result, err := h.service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAuditLogByID handles GET /auditlogs/:id
// @Summary Get audit log by ID
// @Tags AuditLog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audit Log ID"
// @Success 200 {object} AuditLog
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /auditlogs/{id} [get]
func (h *Handler) GetAuditLogByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audit log ID"})
		return
	}

	log, err := h.service.GetAuditLogByID(c.Request.Context(), c.GetUint("user_id"), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audit log not found"})
		return
	}

	c.JSON(http.StatusOK, log)
}
