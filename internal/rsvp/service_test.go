package rsvp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"github.com/sharath018/invitation-rsvp-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvitations map[string]*invitation.Invitation

func (f fakeInvitations) Get(_ context.Context, id string) (*invitation.Invitation, error) {
	inv, ok := f[id]
	if !ok {
		return nil, invitation.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f fakeInvitations) GetOwned(ctx context.Context, userID uint, id string) (*invitation.Invitation, error) {
	inv, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, invitation.ErrForbidden
	}
	return inv, nil
}

type fixture struct {
	svc    Service
	broker *changefeed.Broker
	sub    changefeed.Subscription
}

func newFixture(t *testing.T) *fixture {
	db := testutil.OpenDB(t, &Response{}, &survey.Question{}, &survey.Choice{}, &survey.Answer{})
	surveyRepo := survey.NewRepository(db)

	closeAt := now.Add(time.Hour)
	pastClose := now.Add(-time.Hour)
	invitations := fakeInvitations{
		"open":   {ID: "open", UserID: 1, Title: "Picnic", CloseAt: &closeAt, BackgroundColor: "#ff0000", BackgroundGradient: true},
		"closed": {ID: "closed", UserID: 1, Title: "Past", CloseAt: &pastClose},
	}

	broker := changefeed.NewBroker()
	sub, err := broker.Subscribe(context.Background(), changefeed.CollectionResponses, "open")
	require.NoError(t, err)
	t.Cleanup(func() { sub.Close() })

	surveySvc := survey.NewService(surveyRepo, invitations, auditlog.Nop{}, nil)
	store := NewStore(NewRepository(db), broker, nil)
	svc := NewService(store, surveyRepo, invitations, surveySvc, auditlog.Nop{}, nil,
		WithClock(func() time.Time { return now }))

	return &fixture{svc: svc, broker: broker, sub: sub}
}

func (f *fixture) nextEvent(t *testing.T) changefeed.Event {
	t.Helper()
	select {
	case ev := <-f.sub.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no change event")
		return changefeed.Event{}
	}
}

func TestServiceLifecyclePublishesChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Submit(ctx, "open", Submission{Name: "Ana", Accept: boolPtr(true), NumAttendees: intPtr(2)}, "")
	require.NoError(t, err)

	ev := f.nextEvent(t)
	assert.Equal(t, changefeed.OpInsert, ev.Op)
	assert.Equal(t, result.Response.ID, ev.ID)
	var inserted Response
	require.NoError(t, ev.Decode(&inserted))
	assert.Equal(t, 2, inserted.NumAttendees)

	updated, err := f.svc.UpdateResponse(ctx, 1, "open", result.Response.ID, ResponsePatch{Accept: boolPtr(false)}, "")
	require.NoError(t, err)
	assert.Zero(t, updated.NumAttendees)
	assert.Equal(t, changefeed.OpUpdate, f.nextEvent(t).Op)

	_, err = f.svc.UpdateResponse(ctx, 2, "open", result.Response.ID, ResponsePatch{}, "")
	assert.ErrorIs(t, err, invitation.ErrForbidden)

	require.NoError(t, f.svc.DeleteResponse(ctx, 1, "open", result.Response.ID, ""))
	ev = f.nextEvent(t)
	assert.Equal(t, changefeed.OpDelete, ev.Op)
	assert.Empty(t, ev.Record)

	assert.ErrorIs(t, f.svc.DeleteResponse(ctx, 1, "open", result.Response.ID, ""), ErrResponseNotFound)
}

func TestPublicView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.PublicView(ctx, "open")
	require.NoError(t, err)
	assert.False(t, view.Closed)
	assert.Equal(t, invitation.BackgroundGradient, view.Background.Kind)
	assert.Empty(t, view.Questions)

	view, err = f.svc.PublicView(ctx, "closed")
	require.NoError(t, err)
	assert.True(t, view.Closed)

	_, err = f.svc.PublicView(ctx, "missing")
	assert.ErrorIs(t, err, invitation.ErrNotFound)
}

func TestSubmitHandlerStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	r := gin.New()
	h := NewHandler(f.svc)
	r.POST("/public/invitations/:id/responses", h.SubmitResponse)

	post := func(id string, body interface{}) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/public/invitations/"+id+"/responses", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("open", gin.H{"name": "Ana", "accept": true})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = post("open", gin.H{"name": "", "accept": true})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)

	w = post("closed", gin.H{"name": "Ana", "accept": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = post("missing", gin.H{"name": "Ana", "accept": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
