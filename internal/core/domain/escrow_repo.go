package domain

import (
	"context"
)

type EscrowEventRepository interface {
	Save(ctx context.Context, id string, events ...EscrowEvent) (*Escrow, error)
	Load(ctx context.Context, id string) (*Escrow, error)
	RegisterEventsHandler(func(*Escrow))
	Close()
}

type EscrowRepository interface {
	AddOrUpdateEscrow(ctx context.Context, escrow Escrow) error
	GetEscrowWithId(ctx context.Context, id string) (*Escrow, error)
	GetActiveEscrows(ctx context.Context) ([]Escrow, error)
	GetEscrowsWithSecretHash(ctx context.Context, secretHash []byte) ([]Escrow, error)
	GetExpiredEscrows(ctx context.Context) ([]Escrow, error)
	Close()
}
