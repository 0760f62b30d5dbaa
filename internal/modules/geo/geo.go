// Package geo turns store addresses into map coordinates. Lookups are best
// effort: Resolver always answers, falling back to a fixed point.
package geo

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ErrNoResult is returned when the geocoder knows no place for an address.
var ErrNoResult = errors.New("geocode: no result")

// Geocoder looks up the coordinates of a free-form address.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (Coordinates, error)
}

// Resolver wraps a Geocoder and never fails.
type Resolver struct {
	geocoder Geocoder
	fallback Coordinates
}

func NewResolver(g Geocoder, fallback Coordinates) *Resolver {
	return &Resolver{geocoder: g, fallback: fallback}
}

// Resolve returns the address's coordinates, or the fallback point when the
// address is blank or the lookup fails for any reason.
func (r *Resolver) Resolve(ctx context.Context, address string) Coordinates {
	address = strings.TrimSpace(address)
	if address == "" || r.geocoder == nil {
		return r.fallback
	}
	c, err := r.geocoder.Lookup(ctx, address)
	if err != nil {
		zap.S().Warnw("geocode failed, using fallback", "address", address, "error", err)
		return r.fallback
	}
	return c
}
