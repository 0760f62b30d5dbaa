package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Nominatim queries a Nominatim-compatible /search endpoint. Requests are
// rate limited to one per second and identical concurrent lookups share a
// single request. A lookup, including its wait for the limiter, never runs
// longer than timeout.
type Nominatim struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	limiter   *rate.Limiter
	group     singleflight.Group
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Lookup(ctx context.Context, address string) (Coordinates, error) {
	v, err, _ := n.group.Do(address, func() (interface{}, error) {
		return n.search(ctx, address)
	})
	if err != nil {
		return Coordinates{}, err
	}
	return v.(Coordinates), nil
}

func (n *Nominatim) search(ctx context.Context, address string) (Coordinates, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	// Wait fails at once when the next token is due after the deadline.
	if err := n.limiter.Wait(ctx); err != nil {
		return Coordinates{}, fmt.Errorf("geocode rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Coordinates{}, fmt.Errorf("geocode response: %w", err)
	}
	if len(places) == 0 {
		return Coordinates{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode response lat: %w", err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode response lon: %w", err)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}
