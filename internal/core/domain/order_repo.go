package domain

import (
	"context"
)

type OrderRepository interface {
	AddOrder(ctx context.Context, order Order) error
	GetOrderWithId(ctx context.Context, id string) (*Order, error)
	GetOrdersWithOwner(ctx context.Context, owner string) ([]Order, error)
	DeleteOrder(ctx context.Context, id string) error
	Close()
}
