package share

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"go.uber.org/zap"
)

type InvitationOwner interface {
	GetOwned(ctx context.Context, userID uint, id string) (*invitation.Invitation, error)
}

type Handler struct {
	invitations InvitationOwner
	baseURL     string
	log         *zap.Logger
}

func NewHandler(invitations InvitationOwner, baseURL string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{invitations: invitations, baseURL: baseURL, log: log}
}

// GetShareLinks godoc
// @Summary Public link and social share links of an invitation
// @Tags Sharing
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} Links
// @Router /invitations/{id}/share [get]
func (h *Handler) GetShareLinks(c *gin.Context) {
	inv, err := h.invitations.GetOwned(c.Request.Context(), c.GetUint("user_id"), c.Param("id"))
	if err != nil {
		invitation.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, BuildLinks(h.baseURL, inv))
}

// GetQRCode godoc
// @Summary QR code (PNG) of the public invitation link
// @Tags Sharing
// @Produce png
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param size query int false "Edge length in pixels (128-1024, default 256)"
// @Success 200 {file} file
// @Router /invitations/{id}/qr [get]
func (h *Handler) GetQRCode(c *gin.Context) {
	inv, err := h.invitations.GetOwned(c.Request.Context(), c.GetUint("user_id"), c.Param("id"))
	if err != nil {
		invitation.RespondError(c, err)
		return
	}

	size, _ := strconv.Atoi(c.Query("size"))
	png, err := QRCode(h.baseURL, inv.ID, size)
	if err != nil {
		h.log.Error("encode qr code", zap.String("invitation_id", inv.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR code"})
		return
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invitation_%s_qr.png", inv.ID))
	}
	c.Data(http.StatusOK, "image/png", png)
}
