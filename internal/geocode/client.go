// Package geocode resolves free-text addresses to coordinates through a
// Nominatim-compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrEmptyQuery = errors.New("query is required")
	ErrUpstream   = errors.New("geocoder unavailable")
)

const (
	defaultLimit = 5
	maxLimit     = 10
	// MinQueryLength is the shortest query sent upstream; shorter ones yield no places
	MinQueryLength = 3
)

type Place struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewClient builds a client that sends at most rps requests per second.
// Public Nominatim asks for one request per second and an identifying User-Agent.
func NewClient(baseURL, userAgent string, rps float64, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		log:       log,
	}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len([]rune(query)) < MinQueryLength {
		return []Place{}, nil
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("geocoder request failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("geocoder returned error status", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var raw []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	places := make([]Place, 0, len(raw))
	for _, p := range raw {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		places = append(places, Place{DisplayName: p.DisplayName, Latitude: lat, Longitude: lon})
	}
	return places, nil
}
