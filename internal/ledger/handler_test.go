package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/rsvp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownedBy uint

func (o ownedBy) GetOwned(_ context.Context, userID uint, id string) (*invitation.Invitation, error) {
	if id != invID {
		return nil, invitation.ErrNotFound
	}
	if userID != uint(o) {
		return nil, invitation.ErrForbidden
	}
	return &invitation.Invitation{ID: id, UserID: userID}, nil
}

func newRouter(h *Handler, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/invitations/:id/responses", h.ListResponses)
	r.GET("/invitations/:id/responses/stream", h.StreamResponses)
	return r
}

func TestListResponsesHandler(t *testing.T) {
	set := []rsvp.Response{
		{ID: "a", Accept: true, NumAttendees: 2},
		{ID: "b", Accept: false},
		{ID: "c", Accept: true, NumAttendees: 1},
	}
	h := NewHandler(ownedBy(1), staticSource{responses: set}, changefeed.NewBroker(), nil)

	w := httptest.NewRecorder()
	newRouter(h, 1).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/inv-1/responses?page=2&page_size=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body PageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "c", body.Data[0].ID)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, Aggregates{TotalResponses: 3, TotalAccepted: 2, TotalAttendees: 3}, body.Aggregates)

	w = httptest.NewRecorder()
	newRouter(h, 2).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/inv-1/responses", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func readFrame(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestStreamResponses(t *testing.T) {
	broker := changefeed.NewBroker()
	h := NewHandler(ownedBy(1), staticSource{responses: []rsvp.Response{{ID: "a", Accept: true, NumAttendees: 1}}}, broker, nil)

	srv := httptest.NewServer(newRouter(h, 1))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/invitations/inv-1/responses/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, data := readFrame(t, reader)
	assert.Equal(t, "snapshot", name)
	var snap snapshotFrame
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.Len(t, snap.Responses, 1)

	ev, err := changefeed.NewEvent(changefeed.OpInsert, changefeed.CollectionResponses, invID, "b", rsvp.Response{ID: "b", Accept: true, NumAttendees: 3})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, ev))

	name, data = readFrame(t, reader)
	assert.Equal(t, "change", name)
	var change changeFrame
	require.NoError(t, json.Unmarshal([]byte(data), &change))
	assert.Equal(t, "b", change.Event.ID)
	assert.Equal(t, Aggregates{TotalResponses: 2, TotalAccepted: 2, TotalAttendees: 4}, change.Aggregates)
}
