package catalog

import "context"

// Repository reads the public catalogue.
type Repository interface {
	// ListAvailable returns live items with stock left, grouped by store
	// name and then item name.
	ListAvailable(ctx context.Context) ([]*Listing, error)
}
