package share

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func party() *invitation.Invitation {
	return &invitation.Invitation{
		ID:         "summer-bbq",
		UserID:     3,
		Title:      "Summer BBQ",
		ActivityAt: time.Date(2025, 7, 19, 17, 0, 0, 0, time.UTC),
	}
}

func TestBuildLinks(t *testing.T) {
	links := BuildLinks("https://rsvp.example.com/", party())

	assert.Equal(t, "https://rsvp.example.com/rsvp/summer-bbq", links.URL)
	assert.Equal(t, "You're invited: Summer BBQ on Sat, 19 Jul 2025 17:00", links.Text)

	wa, err := url.Parse(links.WhatsApp)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", wa.Host)
	assert.Equal(t, links.Text+" "+links.URL, wa.Query().Get("text"))

	x, err := url.Parse(links.X)
	require.NoError(t, err)
	assert.Equal(t, links.URL, x.Query().Get("url"))

	for _, l := range []string{links.Facebook, links.Telegram, links.LinkedIn} {
		u, err := url.Parse(l)
		require.NoError(t, err)
		assert.Equal(t, links.URL, u.Query().Get("url")+u.Query().Get("u"), l)
	}

	assert.True(t, strings.HasPrefix(links.Email, "mailto:?subject=Summer%20BBQ&body="))
	assert.NotContains(t, links.Email, "+")
}

func TestPublicURLEscapesID(t *testing.T) {
	assert.Equal(t, "http://x/rsvp/a%2Fb", PublicURL("http://x", "a/b"))
}

func TestClampQRSize(t *testing.T) {
	for in, want := range map[int]int{0: 256, -5: 256, 50: 128, 300: 300, 5000: 1024} {
		assert.Equal(t, want, ClampQRSize(in), "size %d", in)
	}
}

type owner struct{ inv *invitation.Invitation }

func (o owner) GetOwned(_ context.Context, userID uint, id string) (*invitation.Invitation, error) {
	if id != o.inv.ID {
		return nil, invitation.ErrNotFound
	}
	if userID != o.inv.UserID {
		return nil, invitation.ErrForbidden
	}
	return o.inv, nil
}

func router(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(owner{party()}, "https://rsvp.example.com", nil)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/invitations/:id/share", h.GetShareLinks)
	r.GET("/invitations/:id/qr", h.GetQRCode)
	return r
}

func TestQRCodeHandler(t *testing.T) {
	w := httptest.NewRecorder()
	router(3).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/summer-bbq/qr?size=9999&download=true", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invitation_summer-bbq_qr.png")

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, MaxQRSize, img.Bounds().Dx())
}

func TestShareHandlerOwnership(t *testing.T) {
	w := httptest.NewRecorder()
	router(3).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/summer-bbq/share", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"https://rsvp.example.com/rsvp/summer-bbq"`)

	w = httptest.NewRecorder()
	router(4).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/summer-bbq/share", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router(3).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/other/qr", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmailLinkEscapesAmpersand(t *testing.T) {
	inv := party()
	inv.Title = "Tom & Jerry"
	assert.Contains(t, BuildLinks("http://x", inv).Email, "subject=Tom%20%26%20Jerry&body=")
}
