package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"go.uber.org/zap"
)

const keepAliveInterval = 25 * time.Second

type InvitationOwner interface {
	GetOwned(ctx context.Context, userID uint, id string) (*invitation.Invitation, error)
}

type Handler struct {
	invitations InvitationOwner
	source      Source
	feed        changefeed.Subscriber
	log         *zap.Logger
	keepAlive   time.Duration
}

func NewHandler(invitations InvitationOwner, source Source, feed changefeed.Subscriber, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{invitations: invitations, source: source, feed: feed, log: log, keepAlive: keepAliveInterval}
}

type PageResponse struct {
	Data       []rsvp.Response `json:"data"`
	Aggregates Aggregates      `json:"aggregates"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// ListResponses godoc
// @Summary Page through the responses of an invitation
// @Tags Responses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 10)"
// @Success 200 {object} PageResponse
// @Router /invitations/{id}/responses [get]
func (h *Handler) ListResponses(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.invitations.GetOwned(c.Request.Context(), c.GetUint("user_id"), id); err != nil {
		invitation.RespondError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if size < 1 || size > 100 {
		size = 10
	}

	l := New(id, h.source, h.feed, WithLogger(h.log))
	all, err := l.Load(c.Request.Context())
	if err != nil {
		h.log.Error("load responses failed", zap.String("invitation_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load responses"})
		return
	}

	c.JSON(http.StatusOK, PageResponse{
		Data:       l.Page(page, size),
		Aggregates: l.Aggregates(),
		Page:       page,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(len(all)) / float64(size))),
	})
}

type snapshotFrame struct {
	Responses  []rsvp.Response `json:"responses"`
	Aggregates Aggregates      `json:"aggregates"`
}

type changeFrame struct {
	Event      changefeed.Event `json:"event"`
	Aggregates Aggregates       `json:"aggregates"`
}

// StreamResponses godoc
// @Summary Live response feed (Server-Sent Events)
// @Description Sends a "snapshot" frame, then one "change" frame per response change
// @Tags Responses
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param token query string false "Access token for EventSource clients"
// @Router /invitations/{id}/responses/stream [get]
func (h *Handler) StreamResponses(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.invitations.GetOwned(c.Request.Context(), c.GetUint("user_id"), id); err != nil {
		invitation.RespondError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	changes := make(chan changeFrame, 64)
	resync := make(chan struct{}, 1)

	l := New(id, h.source, h.feed, WithLogger(h.log))
	err := l.Subscribe(ctx, func(ev changefeed.Event, agg Aggregates) {
		select {
		case changes <- changeFrame{Event: ev, Aggregates: agg}:
		default:
			// slow client: drop the frame and send a fresh snapshot instead
			select {
			case resync <- struct{}{}:
			default:
			}
		}
	})
	if err != nil {
		h.log.Error("change feed subscribe failed", zap.String("invitation_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "live updates unavailable"})
		return
	}
	defer l.Unsubscribe()

	responses, err := l.Load(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load responses"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	write := func(event string, payload interface{}) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			return true
		}
		if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !write("snapshot", snapshotFrame{Responses: responses, Aggregates: Summarize(responses)}) {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-changes:
			if !write("change", frame) {
				return
			}
		case <-resync:
			if !write("snapshot", snapshotFrame{Responses: l.Responses(), Aggregates: l.Aggregates()}) {
				return
			}
		case <-ticker.C:
			if _, err := c.Writer.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
