package invitation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sharath018/invitation-rsvp-backend/internal/storage"
	"github.com/sharath018/invitation-rsvp-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// RespondError maps invitation errors onto HTTP statuses
func RespondError(c *gin.Context, err error) {
	var upErr *storage.UploadError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrIDTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &upErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "background upload failed", "details": upErr.Err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindRequest accepts either a JSON body or a multipart form carrying the
// JSON in a "payload" field and an optional "background" image.
func bindRequest(c *gin.Context) (InvitationRequest, *storage.File, func(), error) {
	var req InvitationRequest
	noop := func() {}

	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, noop, err
		}
		return req, nil, noop, nil
	}

	if err := json.Unmarshal([]byte(c.PostForm("payload")), &req); err != nil {
		return req, nil, noop, errors.New("payload must be a JSON document")
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, nil, noop, err
	}

	file, closer, err := formImage(c, "background")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, noop, nil
		}
		return req, nil, noop, err
	}
	return req, file, closer, nil
}

func formImage(c *gin.Context, field string) (*storage.File, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, func() { f.Close() }, nil
}

// ===========================
// 🎯 Create Invitation
// @Summary Create an invitation
// @Description JSON body, or multipart with a "payload" JSON field and an optional "background" image
// @Tags Invitations
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param body body InvitationRequest true "Invitation"
// @Success 201 {object} Invitation
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /invitations [post]
func (h *Handler) CreateInvitation(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req, bg, closeFile, err := bindRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFile()

	inv, err := h.Service.Create(c.Request.Context(), userID, req, bg, middleware.GetIPFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// ===========================
// 📦 List My Invitations
// @Summary List the organizer's invitations
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Param search query string false "Title or address contains"
// @Success 200 {object} PaginatedInvitations
// @Router /invitations [get]
func (h *Handler) ListInvitations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.Service.List(c.Request.Context(), c.GetUint("user_id"), page, limit, c.Query("search"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// 🔍 Get Invitation (owner view)
// @Summary Get one of the organizer's invitations
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} Invitation
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invitations/{id} [get]
func (h *Handler) GetInvitation(c *gin.Context) {
	inv, err := h.Service.GetOwned(c.Request.Context(), c.GetUint("user_id"), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invitation": inv,
		"background": inv.ResolveBackground(),
		"primary":    inv.ResolvePrimary(),
	})
}

// ===========================
// 🔄 Update Invitation
// @Summary Update an invitation
// @Tags Invitations
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param body body InvitationRequest true "Invitation"
// @Success 200 {object} Invitation
// @Router /invitations/{id} [put]
func (h *Handler) UpdateInvitation(c *gin.Context) {
	req, bg, closeFile, err := bindRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFile()

	inv, err := h.Service.Update(c.Request.Context(), c.GetUint("user_id"), c.Param("id"), req, bg, middleware.GetIPFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ===========================
// 🖼️ Upload Background
// @Summary Replace the background image
// @Tags Invitations
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param background formData file true "Image"
// @Success 200 {object} Invitation
// @Failure 502 {object} map[string]string
// @Router /invitations/{id}/background [post]
func (h *Handler) UploadBackground(c *gin.Context) {
	file, closeFile, err := formImage(c, "background")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "background file is required"})
		return
	}
	defer closeFile()

	inv, err := h.Service.ReplaceBackground(c.Request.Context(), c.GetUint("user_id"), c.Param("id"), *file, middleware.GetIPFromContext(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ===========================
// ❌ Delete Invitation
// @Summary Delete an invitation with its responses and survey
// @Tags Invitations
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} map[string]string
// @Router /invitations/{id} [delete]
func (h *Handler) DeleteInvitation(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.GetUint("user_id"), c.Param("id"), middleware.GetIPFromContext(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation deleted"})
}
