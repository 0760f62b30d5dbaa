package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/validate"
)

// Service is the store-facing item management surface. Every operation is
// scoped to the acting store's own items.
type Service interface {
	CreateItem(ctx context.Context, actor access.Actor, req ItemRequest) (*Item, error)
	GetItem(ctx context.Context, actor access.Actor, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, actor access.Actor) ([]*Item, error)
	UpdateItem(ctx context.Context, actor access.Actor, id uuid.UUID, req ItemRequest) (*Item, error)
	DeleteItem(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func normalize(req ItemRequest) (ItemRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	req.Price = req.Price.Round(2)
	return req, nil
}

func (s *service) CreateItem(ctx context.Context, actor access.Actor, req ItemRequest) (*Item, error) {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return nil, err
	}
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	it := &Item{
		ID:          uuid.New(),
		StoreID:     actor.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) GetItem(ctx context.Context, actor access.Actor, id uuid.UUID) (*Item, error) {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return nil, err
	}
	return s.repo.GetItem(ctx, actor.ID, id)
}

func (s *service) ListItems(ctx context.Context, actor access.Actor) ([]*Item, error) {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return nil, err
	}
	return s.repo.ListItemsByStore(ctx, actor.ID)
}

func (s *service) UpdateItem(ctx context.Context, actor access.Actor, id uuid.UUID, req ItemRequest) (*Item, error) {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return nil, err
	}
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	it, err := s.repo.GetItem(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}
	it.Name = req.Name
	it.Description = req.Description
	it.Price = req.Price
	it.Quantity = req.Quantity
	it.ImageURL = req.ImageURL
	if req.Version != nil {
		it.Version = *req.Version
	}
	if err := s.repo.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) DeleteItem(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return err
	}
	return s.repo.SoftDeleteItem(ctx, actor.ID, id)
}
