package reports

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// ExportResponses godoc
// @Summary Download the responses of an invitation
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param format query string false "csv (default), excel or pdf"
// @Param date_range query string false "all, daily, weekly, monthly, yearly or custom"
// @Param start_date query string false "YYYY-MM-DD, custom range only"
// @Param end_date query string false "YYYY-MM-DD, custom range only"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invitations/{id}/export [get]
func (h *Handler) ExportResponses(c *gin.Context) {
	req := ExportRequest{
		InvitationID: c.Param("id"),
		Format:       c.DefaultQuery("format", FormatCSV),
		DateRange:    c.DefaultQuery("date_range", DateRangeAll),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
	}

	data, fname, mime, err := h.service.Export(c.Request.Context(), c.GetUint("user_id"), req, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrInvalidDateRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, invitation.ErrNotFound) || errors.Is(err, invitation.ErrForbidden) {
			invitation.RespondError(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export responses"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}
