package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

// clientIP reads the address stored by the audit middleware
func clientIP(c *gin.Context) string {
	if ip := c.GetString("client_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// ===============================
// Registration
// ===============================

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required" example:"Maya Lopez"`
	Email    string `json:"email" binding:"required,email" example:"maya@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"secret123"`
	Phone    string `json:"phone" example:"+14155550100"`
}

// Register godoc
// @Summary Register an organizer account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), RegisterInput(req), clientIP(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidPhone), errors.Is(err, ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": user})
}

// ===============================
// Login
// ===============================

type loginReq struct {
	Email    string `json:"email" binding:"required,email" example:"maya@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// Login godoc
// @Summary Log in and receive a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginReq true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tokens, user, err := h.service.Login(c.Request.Context(), LoginInput(req), clientIP(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"user": gin.H{
			"id":       user.ID,
			"fullName": user.FullName,
			"email":    user.Email,
		},
	})
}

// ===============================
// Refresh Token
// ===============================

type refreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh godoc
// @Summary Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body refreshReq true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

// ===============================
// Forgot / Reset Password
// ===============================

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

const resetSentMessage = "If an account exists with this email, a password reset link has been sent"

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body forgotPasswordReq true "Email"
// @Success 200 {object} map[string]string
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid email address"})
		return
	}

	err := h.service.RequestPasswordReset(c.Request.Context(), req.Email)
	switch {
	case err == nil, errors.Is(err, ErrUserNotFound):
		// do not reveal whether the account exists
		c.JSON(http.StatusOK, gin.H{"message": resetSentMessage})
	case errors.Is(err, ErrEmailNotSent):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Email service is currently unavailable. Please try again later."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred. Please try again later."})
	}
}

type resetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body resetPasswordReq true "Token and password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide both token and new password"})
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, clientIP(c)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrWeakPassword) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

// Logout godoc
// @Summary Log out (tokens are stateless, the client discards them)
// @Tags Auth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me godoc
// @Summary Current organizer profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} User
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.GetUserByID(c.Request.Context(), c.GetUint("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
