package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nominatim fakes the search endpoint. Queries named "slow" block until the
// request is cancelled so tests can overlap them.
func nominatim(t *testing.T, started chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if started != nil {
			started <- q
		}
		switch q {
		case "slow":
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		json.NewEncoder(w).Encode([]map[string]string{
			{"display_name": q + ", Lisbon", "lat": "38.7223", "lon": "-9.1393"},
			{"display_name": "bad coords", "lat": "north", "lon": "-9"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSearch(t *testing.T) {
	srv := nominatim(t, nil)
	c := NewClient(srv.URL, "test-agent", 50, nil)

	places, err := c.Search(context.Background(), "Rua Augusta", 0)
	require.NoError(t, err)
	require.Len(t, places, 1, "unparseable coordinates are dropped")
	assert.Equal(t, Place{DisplayName: "Rua Augusta, Lisbon", Latitude: 38.7223, Longitude: -9.1393}, places[0])

	places, err = c.Search(context.Background(), "ab", 0)
	require.NoError(t, err)
	assert.Empty(t, places)

	_, err = c.Search(context.Background(), "   ", 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = c.Search(context.Background(), "broken", 0)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClientRateLimit(t *testing.T) {
	srv := nominatim(t, nil)
	c := NewClient(srv.URL, "test-agent", 10, nil)

	begin := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Search(context.Background(), "Porto", 1)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(begin), 150*time.Millisecond)
}

func TestSearcherSupersedesInFlightQuery(t *testing.T) {
	started := make(chan string, 4)
	srv := nominatim(t, started)
	s := NewSearcher(NewClient(srv.URL, "test-agent", 100, nil))

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), 1, "slow", 0)
		firstErr <- err
	}()
	require.Equal(t, "slow", <-started)

	places, err := s.Search(context.Background(), 1, "Faro", 0)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Faro, Lisbon", places[0].DisplayName)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(3 * time.Second):
		t.Fatal("superseded search did not return")
	}
}

func TestSearcherUsersAreIndependent(t *testing.T) {
	started := make(chan string, 4)
	srv := nominatim(t, started)
	s := NewSearcher(NewClient(srv.URL, "test-agent", 100, nil))

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Search(ctx, 1, "slow", 0)
		firstErr <- err
	}()
	<-started

	_, err := s.Search(context.Background(), 2, "Braga", 0)
	require.NoError(t, err)
	<-started

	select {
	case <-firstErr:
		t.Fatal("another user's query must not cancel this one")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	err = <-firstErr
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuperseded)
}

func TestSearchHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := nominatim(t, nil)
	h := NewHandler(NewSearcher(NewClient(srv.URL, "test-agent", 100, nil)))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", uint(9)) })
	r.GET("/geocode", h.SearchAddress)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/geocode?q=Coimbra", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Coimbra, Lisbon")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/geocode", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/geocode?q=broken", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
