package ports

import "github.com/swaplock/swapd/internal/core/domain"

type RepoManager interface {
	Events() domain.EscrowEventRepository
	Escrows() domain.EscrowRepository
	Orders() domain.OrderRepository
	RegisterEventsHandler(func(*domain.Escrow))
	Close()
}
