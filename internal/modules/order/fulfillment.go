package order

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

func (s *service) UpdateOrderItemStatus(ctx context.Context, actor access.Actor, lineID uuid.UUID, status string) (*OrderItem, error) {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return nil, err
	}
	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var line *OrderItem
	err = s.repo.InTx(ctx, func(q Queries) error {
		l, err := q.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if err := s.checkStoreLine(ctx, q, actor.ID, l); err != nil {
			return err
		}

		if l.Status == next {
			line = l
			return nil
		}
		if !CanTransition(l.Status, next) {
			return fmt.Errorf("cannot move line from %s to %s: %w", l.Status, next, apperr.ErrInvalidTransition)
		}
		if err := q.UpdateLineStatus(ctx, l.ID, next); err != nil {
			return err
		}
		l.Status = next
		line = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// checkStoreLine reports ErrNotFound unless the line's item belongs to the
// store and its order has been submitted.
func (s *service) checkStoreLine(ctx context.Context, q Queries, storeID uuid.UUID, l *OrderItem) error {
	notFound := fmt.Errorf("order line %s: %w", l.ID, apperr.ErrNotFound)

	items, err := q.ItemsByID(ctx, []uuid.UUID{l.ItemID})
	if err != nil {
		return err
	}
	if it, ok := items[l.ItemID]; !ok || it.StoreID != storeID {
		return notFound
	}
	o, err := q.GetOrder(ctx, l.OrderID)
	if err != nil {
		return err
	}
	if !o.Submitted {
		return notFound
	}
	return nil
}

func (s *service) ListStoreOrders(ctx context.Context, actor access.Actor, includeCompleted bool) ([]*OrderView, error) {
	if err := access.Require(actor, access.RoleStore); err != nil {
		return nil, err
	}
	orders, err := s.repo.ListSubmittedForStore(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	visible := orders[:0]
	for _, o := range orders {
		if len(o.Items) == 0 {
			continue
		}
		if includeCompleted || OverallStatus(o.Items) != StatusCompleted {
			visible = append(visible, o)
		}
	}
	return s.views(ctx, s.repo, visible, true)
}

type exportRow struct {
	OrderID     string `csv:"order_id"`
	SubmittedAt string `csv:"submitted_at"`
	Customer    string `csv:"customer"`
	Email       string `csv:"email"`
	Item        string `csv:"item"`
	Quantity    int    `csv:"quantity"`
	LineTotal   string `csv:"line_total"`
	Status      string `csv:"status"`
}

func (s *service) ExportStoreOrders(ctx context.Context, actor access.Actor, w io.Writer) error {
	views, err := s.ListStoreOrders(ctx, actor, true)
	if err != nil {
		return err
	}

	rows := []*exportRow{}
	for _, v := range views {
		submitted := ""
		if v.SubmittedAt != nil {
			submitted = v.SubmittedAt.UTC().Format(time.RFC3339)
		}
		var name, email string
		if v.Customer != nil {
			name, email = v.Customer.FullName, v.Customer.Email
		}
		for _, l := range v.Lines {
			rows = append(rows, &exportRow{
				OrderID:     v.ID.String(),
				SubmittedAt: submitted,
				Customer:    name,
				Email:       email,
				Item:        l.Name,
				Quantity:    l.Quantity,
				LineTotal:   l.LineTotal.StringFixed(2),
				Status:      string(l.Status),
			})
		}
	}
	return gocsv.Marshal(rows, w)
}
