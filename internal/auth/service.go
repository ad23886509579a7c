package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nyaruka/phonenumbers"
	"github.com/sharath018/invitation-rsvp-backend/config"
	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("your account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailNotSent       = errors.New("failed to send email")
)

const resetTokenTTL = 15 * time.Minute

// TokenStore keeps password-reset tokens
type TokenStore interface {
	SetToken(ctx context.Context, key, value string, ttl time.Duration) error
	GetToken(ctx context.Context, key string) (string, error)
	DeleteToken(ctx context.Context, key string) error
}

// ResetMailer delivers password-reset links
type ResetMailer interface {
	SendResetLink(ctx context.Context, to, link string) error
}

type Service interface {
	Register(ctx context.Context, input RegisterInput, ip string) (*User, error)
	Login(ctx context.Context, input LoginInput, ip string) (*TokenPair, *User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	GetUserByID(ctx context.Context, userID uint) (*User, error)
	// ParseAccessToken validates an access token and returns its user id
	ParseAccessToken(token string) (uint, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, newPassword string, ip string) error
}

type service struct {
	repo          Repository
	tokens        TokenStore
	mailer        ResetMailer
	auditSvc      auditlog.Service
	log           *zap.Logger
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	phoneRegion   string
	frontendURL   string
}

func NewService(r Repository, tokens TokenStore, mailer ResetMailer, auditSvc auditlog.Service, cfg *config.Config, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:          r,
		tokens:        tokens,
		mailer:        mailer,
		auditSvc:      auditSvc,
		log:           log,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
		phoneRegion:   cfg.PhoneRegion,
		frontendURL:   cfg.FrontendURL,
	}
}

// =============================
// Register
// =============================

func (s *service) Register(ctx context.Context, in RegisterInput, ip string) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	details := map[string]interface{}{"email": email}

	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}

	phone, err := NormalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        phone,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		details["error"] = err.Error()
		s.auditSvc.LogAction(ctx, nil, nil, auditlog.ActionUserRegistered, details, ip, auditlog.StatusFailure)
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &user.ID, nil, auditlog.ActionUserRegistered, details, ip, auditlog.StatusSuccess)
	return user, nil
}

// NormalizePhone returns the E.164 form of raw, or "" when raw is empty
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// =============================
// Login
// =============================

func (s *service) Login(ctx context.Context, in LoginInput, ip string) (*TokenPair, *User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	details := map[string]interface{}{"email": email}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		details["error"] = err.Error()
		s.auditSvc.LogAction(ctx, nil, nil, auditlog.ActionUserLogin, details, ip, auditlog.StatusFailure)
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		details["error"] = "password mismatch"
		s.auditSvc.LogAction(ctx, &user.ID, nil, auditlog.ActionUserLogin, details, ip, auditlog.StatusFailure)
		return nil, nil, ErrInvalidCredentials
	}

	if user.Status != StatusActive {
		return nil, nil, ErrAccountDisabled
	}

	accessToken, err := s.sign(user.ID, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.sign(user.ID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	s.auditSvc.LogAction(ctx, &user.ID, nil, auditlog.ActionUserLogin, details, ip, auditlog.StatusSuccess)
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

func (s *service) sign(userID uint, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseUserID(tokenStr, secret string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(userIDFloat), nil
}

func (s *service) ParseAccessToken(token string) (uint, error) {
	return parseUserID(token, s.accessSecret)
}

// =============================
// Refresh
// =============================

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := parseUserID(refreshToken, s.refreshSecret)
	if err != nil {
		return "", errors.New("invalid refresh token")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", ErrUserNotFound
	}
	if user.Status != StatusActive {
		return "", ErrAccountDisabled
	}

	return s.sign(user.ID, s.accessSecret, s.accessTTL)
}

// =============================
// Forgot / Reset Password
// =============================

func resetKey(token string) string {
	return fmt.Sprintf("reset_token:%s", token)
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	resetToken, err := generateSecureToken()
	if err != nil {
		return err
	}

	if err := s.tokens.SetToken(ctx, resetKey(resetToken), strconv.FormatUint(uint64(user.ID), 10), resetTokenTTL); err != nil {
		return fmt.Errorf("could not save reset token: %w", err)
	}

	link := fmt.Sprintf("%s/auth/reset-password?token=%s", s.frontendURL, resetToken)
	if err := s.mailer.SendResetLink(ctx, user.Email, link); err != nil {
		s.log.Warn("reset email failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrEmailNotSent, err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token string, newPassword string, ip string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	val, err := s.tokens.GetToken(ctx, resetKey(token))
	if err != nil {
		return ErrInvalidToken
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, uint(userID))
	if err != nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, user); err != nil {
		s.auditSvc.LogAction(ctx, &user.ID, nil, auditlog.ActionPasswordReset, map[string]interface{}{"error": err.Error()}, ip, auditlog.StatusFailure)
		return errors.New("failed to update password")
	}

	_ = s.tokens.DeleteToken(ctx, resetKey(token))
	s.auditSvc.LogAction(ctx, &user.ID, nil, auditlog.ActionPasswordReset, nil, ip, auditlog.StatusSuccess)
	return nil
}

// =============================
// Get User By ID
// =============================

func (s *service) GetUserByID(ctx context.Context, userID uint) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func generateSecureToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
