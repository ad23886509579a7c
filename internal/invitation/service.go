package invitation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrNotFound            = errors.New("invitation not found")
	ErrForbidden           = errors.New("write access denied")
	ErrIDTaken             = errors.New("invitation id already in use")
	ErrInvalidID           = errors.New("invitation id may only contain letters, digits, '-' and '_'")
	ErrCloseBeforeCreation = errors.New("close date must not be before the creation date")
	ErrInvalidStyle        = errors.New("style must be DEFAULT or FANCY")
	ErrInvalidColor        = errors.New("colors must be #rgb or #rrggbb")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidCoordinates  = errors.New("latitude and longitude must be given together and be in range")
)

// IsValidation reports whether err was caused by bad input
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidID, ErrCloseBeforeCreation, ErrInvalidStyle, ErrInvalidColor,
		ErrInvalidDate, ErrInvalidCoordinates,
		storage.ErrEmptyFile, storage.ErrTooLarge, storage.ErrUnsupportedType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const dateOnlyLayout = "2006-01-02"

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", dateOnlyLayout}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q", ErrInvalidDate, field, raw)
}

// parseCloseDate reads a date without a time as the last second of that day
func parseCloseDate(raw string) (time.Time, error) {
	t, err := parseDate("close_at", raw)
	if err != nil {
		return t, err
	}
	if _, err := time.Parse(dateOnlyLayout, strings.TrimSpace(raw)); err == nil {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

type Service interface {
	Create(ctx context.Context, userID uint, req InvitationRequest, background *storage.File, ip string) (*Invitation, error)
	Update(ctx context.Context, userID uint, id string, req InvitationRequest, background *storage.File, ip string) (*Invitation, error)
	ReplaceBackground(ctx context.Context, userID uint, id string, background storage.File, ip string) (*Invitation, error)
	Delete(ctx context.Context, userID uint, id string, ip string) error

	// GetOwned returns the invitation only when userID owns it
	GetOwned(ctx context.Context, userID uint, id string) (*Invitation, error)
	// Get is the public, cached read used by guests
	Get(ctx context.Context, id string) (*Invitation, error)
	List(ctx context.Context, userID uint, page, limit int, search string) (*PaginatedInvitations, error)
}

type service struct {
	repo           Repository
	uploader       storage.Uploader
	auditSvc       auditlog.Service
	cache          Cache
	publisher      changefeed.Publisher
	log            *zap.Logger
	now            func() time.Time
	maxUploadBytes int64
}

type Option func(*service)

func WithCache(c Cache) Option { return func(s *service) { s.cache = c } }

// WithPublisher announces the responses removed with a deleted invitation
func WithPublisher(p changefeed.Publisher) Option { return func(s *service) { s.publisher = p } }

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func WithLogger(l *zap.Logger) Option { return func(s *service) { s.log = l } }

func WithMaxUploadBytes(n int64) Option { return func(s *service) { s.maxUploadBytes = n } }

func NewService(repo Repository, uploader storage.Uploader, auditSvc auditlog.Service, opts ...Option) Service {
	s := &service{
		repo:     repo,
		uploader: uploader,
		auditSvc: auditSvc,
		cache:    noCache{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===========================
// 🎯 Create Invitation
func (s *service) Create(ctx context.Context, userID uint, req InvitationRequest, background *storage.File, ip string) (*Invitation, error) {
	inv := &Invitation{UserID: userID, NotifyOnResponse: true}
	if err := applyRequest(inv, req); err != nil {
		return nil, s.fail(ctx, userID, nil, auditlog.ActionInvitationCreated, err, ip)
	}

	if inv.CloseAt != nil && inv.CloseAt.Before(s.now()) {
		return nil, s.fail(ctx, userID, nil, auditlog.ActionInvitationCreated, ErrCloseBeforeCreation, ip)
	}

	inv.ID = strings.TrimSpace(req.ID)
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	} else {
		if !idPattern.MatchString(inv.ID) {
			return nil, s.fail(ctx, userID, nil, auditlog.ActionInvitationCreated, ErrInvalidID, ip)
		}
		if _, err := s.repo.GetByID(ctx, inv.ID); err == nil {
			return nil, s.fail(ctx, userID, nil, auditlog.ActionInvitationCreated, ErrIDTaken, ip)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	// the image goes first; a failed upload leaves nothing behind
	if background != nil {
		url, err := s.upload(ctx, inv.ID, *background)
		if err != nil {
			return nil, s.fail(ctx, userID, &inv.ID, auditlog.ActionInvitationCreated, err, ip)
		}
		inv.BackgroundImageURL = url
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, s.fail(ctx, userID, nil, auditlog.ActionInvitationCreated, err, ip)
	}

	s.auditSvc.LogAction(ctx, &userID, &inv.ID, auditlog.ActionInvitationCreated, map[string]interface{}{
		"title":       inv.Title,
		"activity_at": inv.ActivityAt,
		"has_image":   inv.BackgroundImageURL != "",
	}, ip, auditlog.StatusSuccess)

	s.log.Info("invitation created", zap.String("invitation_id", inv.ID), zap.Uint("user_id", userID))
	return inv, nil
}

// ===========================
// 🔄 Update Invitation
//
// The close date is not checked against the current time here; an organizer
// may move it into the past to stop accepting responses.
func (s *service) Update(ctx context.Context, userID uint, id string, req InvitationRequest, background *storage.File, ip string) (*Invitation, error) {
	inv, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, s.fail(ctx, userID, &id, auditlog.ActionInvitationUpdated, err, ip)
	}

	if err := applyRequest(inv, req); err != nil {
		return nil, s.fail(ctx, userID, &id, auditlog.ActionInvitationUpdated, err, ip)
	}
	if req.RemoveBackground {
		inv.BackgroundImageURL = ""
	}

	if background != nil {
		url, err := s.upload(ctx, inv.ID, *background)
		if err != nil {
			return nil, s.fail(ctx, userID, &id, auditlog.ActionInvitationUpdated, err, ip)
		}
		inv.BackgroundImageURL = url
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, s.fail(ctx, userID, &id, auditlog.ActionInvitationUpdated, err, ip)
	}
	s.cache.Delete(ctx, id)

	s.auditSvc.LogAction(ctx, &userID, &id, auditlog.ActionInvitationUpdated, map[string]interface{}{
		"title": inv.Title,
	}, ip, auditlog.StatusSuccess)
	return inv, nil
}

// ===========================
// 🖼️ Replace Background Image
func (s *service) ReplaceBackground(ctx context.Context, userID uint, id string, background storage.File, ip string) (*Invitation, error) {
	inv, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, s.fail(ctx, userID, &id, auditlog.ActionBackgroundUploaded, err, ip)
	}

	url, err := s.upload(ctx, inv.ID, background)
	if err != nil {
		return nil, s.fail(ctx, userID, &id, auditlog.ActionBackgroundUploaded, err, ip)
	}
	inv.BackgroundImageURL = url

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, s.fail(ctx, userID, &id, auditlog.ActionBackgroundUploaded, err, ip)
	}
	s.cache.Delete(ctx, id)

	s.auditSvc.LogAction(ctx, &userID, &id, auditlog.ActionBackgroundUploaded, map[string]interface{}{
		"url": url,
	}, ip, auditlog.StatusSuccess)
	return inv, nil
}

// ===========================
// ❌ Delete Invitation
func (s *service) Delete(ctx context.Context, userID uint, id string, ip string) error {
	if _, err := s.GetOwned(ctx, userID, id); err != nil {
		return s.fail(ctx, userID, &id, auditlog.ActionInvitationDeleted, err, ip)
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail(ctx, userID, &id, auditlog.ActionInvitationDeleted, err, ip)
	}
	s.cache.Delete(ctx, id)
	s.publishRemoved(ctx, id, removed)

	s.auditSvc.LogAction(ctx, &userID, &id, auditlog.ActionInvitationDeleted, nil, ip, auditlog.StatusSuccess)
	return nil
}

func (s *service) publishRemoved(ctx context.Context, invitationID string, responseIDs []string) {
	if s.publisher == nil {
		return
	}
	for _, rid := range responseIDs {
		ev, err := changefeed.NewEvent(changefeed.OpDelete, changefeed.CollectionResponses, invitationID, rid, nil)
		if err == nil {
			err = s.publisher.Publish(ctx, ev)
		}
		if err != nil {
			s.log.Warn("change event not published",
				zap.String("invitation_id", invitationID),
				zap.String("response_id", rid),
				zap.Error(err))
		}
	}
}

// ===========================
// 🔍 Reads
func (s *service) GetOwned(ctx context.Context, userID uint, id string) (*Invitation, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, ErrForbidden
	}
	return inv, nil
}

func (s *service) Get(ctx context.Context, id string) (*Invitation, error) {
	if inv, ok := s.cache.Get(ctx, id); ok {
		return inv, nil
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, inv)
	return inv, nil
}

func (s *service) List(ctx context.Context, userID uint, page, limit int, search string) (*PaginatedInvitations, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	invitations, total, err := s.repo.ListByOwner(ctx, userID, limit, (page-1)*limit, search)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(invitations))
	for i := range invitations {
		ids[i] = invitations[i].ID
	}
	counts, err := s.repo.CountResponses(ctx, ids)
	if err != nil {
		s.log.Warn("response count failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	for i := range invitations {
		invitations[i].ResponseCount = counts[invitations[i].ID]
	}

	return &PaginatedInvitations{
		Data:       invitations,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ===========================
// 🔧 Helpers

func (s *service) upload(ctx context.Context, invitationID string, f storage.File) (string, error) {
	if err := storage.ValidateImage(f, s.maxUploadBytes); err != nil {
		return "", err
	}
	if f.ContentType == "" {
		f.ContentType = storage.ContentTypeFor(f.Name)
	}
	objectPath := storage.ObjectPath(invitationID, f.Name)

	url, err := s.uploader.UploadFile(ctx, storage.BucketBackgrounds, objectPath, f)
	if err != nil {
		var upErr *storage.UploadError
		if !errors.As(err, &upErr) {
			err = &storage.UploadError{Bucket: storage.BucketBackgrounds, Path: objectPath, Err: err}
		}
		s.log.Error("background upload failed", zap.String("invitation_id", invitationID), zap.Error(err))
		return "", err
	}
	return url, nil
}

func (s *service) fail(ctx context.Context, userID uint, invitationID *string, action string, err error, ip string) error {
	s.auditSvc.LogAction(ctx, &userID, invitationID, action, map[string]interface{}{
		"error": err.Error(),
	}, ip, auditlog.StatusFailure)
	return err
}

// applyRequest copies the editable fields of req onto inv
func applyRequest(inv *Invitation, req InvitationRequest) error {
	activityAt, err := parseDate("activity_at", req.ActivityAt)
	if err != nil {
		return err
	}
	var closeAt *time.Time
	if strings.TrimSpace(req.CloseAt) != "" {
		t, err := parseCloseDate(req.CloseAt)
		if err != nil {
			return err
		}
		closeAt = &t
	}

	style := StyleDefault
	if req.Style != "" {
		style = Style(strings.ToUpper(req.Style))
		if !style.Valid() {
			return ErrInvalidStyle
		}
	}

	for _, c := range []string{req.PrimaryColor, req.SecondaryColor, req.BackgroundColor} {
		if !validColor(c) {
			return fmt.Errorf("%w: %q", ErrInvalidColor, c)
		}
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return ErrInvalidCoordinates
	}
	if req.Latitude != nil && (math.Abs(*req.Latitude) > 90 || math.Abs(*req.Longitude) > 180) {
		return ErrInvalidCoordinates
	}

	inv.Title = strings.TrimSpace(req.Title)
	inv.Address = strings.TrimSpace(req.Address)
	inv.Latitude = req.Latitude
	inv.Longitude = req.Longitude
	inv.ActivityAt = activityAt
	inv.CloseAt = closeAt
	inv.AcceptLabel = orDefault(req.AcceptLabel, "Accept")
	inv.RejectLabel = orDefault(req.RejectLabel, "Decline")
	inv.PrimaryColor = orDefault(strings.ToLower(req.PrimaryColor), defaultPrimaryColor)
	inv.SecondaryColor = orDefault(strings.ToLower(req.SecondaryColor), defaultSecondaryColor)
	inv.BackgroundColor = orDefault(strings.ToLower(req.BackgroundColor), defaultBackgroundColor)
	inv.PrimaryGradient = req.PrimaryGradient
	inv.BackgroundGradient = req.BackgroundGradient
	inv.FontFamily = strings.TrimSpace(req.FontFamily)
	inv.Italic = req.Italic
	inv.Style = style
	if req.NotifyOnResponse != nil {
		inv.NotifyOnResponse = *req.NotifyOnResponse
	}
	return nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
