package rsvp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"github.com/sharath018/invitation-rsvp-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

func respondError(c *gin.Context, err error) {
	var (
		verr *ValidationError
		perr *PrimaryWriteError
	)
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Error(), "field": verr.Field}
		var incomplete *survey.IncompleteError
		if errors.As(err, &incomplete) {
			body["missing"] = incomplete.Missing
			body["conflicting"] = incomplete.Conflicting
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, ErrInvitationClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not save your response, please try again"})
	case errors.Is(err, ErrResponseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		invitation.RespondError(c, err)
	}
}

// ===========================
// 👀 Public Invitation
// @Summary Public invitation view for guests
// @Tags Public
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} PublicInvitation
// @Failure 404 {object} map[string]string
// @Router /public/invitations/{id} [get]
func (h *Handler) GetPublicInvitation(c *gin.Context) {
	view, err := h.Service.PublicView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ===========================
// 📝 Submit RSVP
// @Summary Answer an invitation
// @Tags Public
// @Accept json
// @Produce json
// @Param id path string true "Invitation ID"
// @Param body body Submission true "Response"
// @Success 201 {object} Result
// @Failure 403 {object} map[string]string "Invitation closed"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Failure 502 {object} map[string]string "Response not saved"
// @Router /public/invitations/{id}/responses [post]
func (h *Handler) SubmitResponse(c *gin.Context) {
	var sub Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Submit(c.Request.Context(), c.Param("id"), sub, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ===========================
// ✏️ Correct a Response
// @Summary Correct a guest response
// @Tags Responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param responseId path string true "Response ID"
// @Param body body ResponsePatch true "Fields to change"
// @Success 200 {object} Response
// @Router /invitations/{id}/responses/{responseId} [patch]
func (h *Handler) UpdateResponse(c *gin.Context) {
	var patch ResponsePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Service.UpdateResponse(c.Request.Context(), c.GetUint("user_id"), c.Param("id"), c.Param("responseId"), patch, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===========================
// ❌ Delete a Response
// @Summary Delete a guest response
// @Tags Responses
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param responseId path string true "Response ID"
// @Success 200 {object} map[string]string
// @Router /invitations/{id}/responses/{responseId} [delete]
func (h *Handler) DeleteResponse(c *gin.Context) {
	err := h.Service.DeleteResponse(c.Request.Context(), c.GetUint("user_id"), c.Param("id"), c.Param("responseId"), middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response deleted"})
}
