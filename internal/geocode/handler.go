package geocode

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	searcher *Searcher
}

func NewHandler(searcher *Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// SearchAddress godoc
// @Summary Address autocomplete
// @Description A newer query from the same organizer cancels the previous one, which then answers 409
// @Tags Geocoding
// @Produce json
// @Security BearerAuth
// @Param q query string true "Free-text address"
// @Param limit query int false "Max results (default 5, max 10)"
// @Success 200 {array} Place
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /geocode [get]
func (h *Handler) SearchAddress(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	places, err := h.searcher.Search(c.Request.Context(), c.GetUint("user_id"), c.Query("q"), limit)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, places)
	case errors.Is(err, ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		// client went away
		c.Status(499)
	}
}
