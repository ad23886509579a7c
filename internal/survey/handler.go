package survey

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// GetQuestions godoc
// @Summary Survey questions of an invitation
// @Tags Survey
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {array} QuestionView
// @Router /invitations/{id}/questions [get]
func (h *Handler) GetQuestions(c *gin.Context) {
	questions, err := h.Service.OwnedQuestions(c.Request.Context(), c.GetUint("user_id"), c.Param("id"))
	if err != nil {
		invitation.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Project(questions))
}

type replaceRequest struct {
	Questions []QuestionInput `json:"questions" binding:"dive"`
}

// ReplaceQuestions godoc
// @Summary Replace the survey of an invitation
// @Description Refused once any guest has answered the survey
// @Tags Survey
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param body body replaceRequest true "Questions in display order"
// @Success 200 {array} QuestionView
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /invitations/{id}/questions [put]
func (h *Handler) ReplaceQuestions(c *gin.Context) {
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := h.Service.Replace(c.Request.Context(), c.GetUint("user_id"), c.Param("id"), req.Questions, middleware.GetIPFromContext(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, Project(questions))
	case errors.Is(err, ErrSurveyLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidSurvey):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		invitation.RespondError(c, err)
	}
}
