package inmemorydb

import (
	"context"
	"fmt"
	"sync"

	"github.com/swaplock/swapd/internal/core/domain"
)

type orderRepository struct {
	lock   *sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderRepository(...interface{}) (domain.OrderRepository, error) {
	return &orderRepository{
		lock:   &sync.RWMutex{},
		orders: make(map[string]domain.Order),
	}, nil
}

func (r *orderRepository) AddOrder(_ context.Context, order domain.Order) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.orders[order.Id]; ok {
		return fmt.Errorf("order %s already exists", order.Id)
	}
	r.orders[order.Id] = order
	return nil
}

func (r *orderRepository) GetOrderWithId(
	_ context.Context, id string,
) (*domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return &order, nil
}

func (r *orderRepository) GetOrdersWithOwner(
	_ context.Context, owner string,
) ([]domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	orders := make([]domain.Order, 0)
	for _, order := range r.orders {
		if order.Owner == owner {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *orderRepository) DeleteOrder(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	delete(r.orders, id)
	return nil
}

func (r *orderRepository) Close() {}
