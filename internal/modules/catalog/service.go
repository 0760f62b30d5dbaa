package catalog

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/predobro/internal/modules/geo"
)

// maxConcurrentLookups caps parallel geocoding per browse request.
const maxConcurrentLookups = 4

// Service defines catalog business logic.
type Service interface {
	// Browse lists every store with at least one item in stock, along with
	// those items and the store's location.
	Browse(ctx context.Context) ([]*Store, error)
}

type service struct {
	repo     Repository
	resolver *geo.Resolver
}

func NewService(repo Repository, resolver *geo.Resolver) Service {
	return &service{repo: repo, resolver: resolver}
}

func (s *service) Browse(ctx context.Context) ([]*Store, error) {
	listings, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	stores := []*Store{}
	byID := map[uuid.UUID]*Store{}
	for _, l := range listings {
		st, ok := byID[l.StoreID]
		if !ok {
			st = &Store{ID: l.StoreID, Name: l.StoreName, Address: l.StoreAddress, Products: []Product{}}
			byID[l.StoreID] = st
			stores = append(stores, st)
		}
		st.Products = append(st.Products, Product{
			ID:          l.ItemID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			Quantity:    l.Quantity,
			ImageURL:    l.ImageURL,
		})
	}

	// Resolve never fails, so the group only bounds concurrency.
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for _, st := range stores {
		st := st
		g.Go(func() error {
			st.Location = s.resolver.Resolve(ctx, st.Address)
			return nil
		})
	}
	_ = g.Wait()
	return stores, nil
}
