package inmemorydb

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/swaplock/swapd/internal/core/domain"
)

type escrowRepository struct {
	lock    *sync.RWMutex
	escrows map[string]domain.Escrow
}

func NewEscrowRepository(...interface{}) (domain.EscrowRepository, error) {
	return &escrowRepository{
		lock:    &sync.RWMutex{},
		escrows: make(map[string]domain.Escrow),
	}, nil
}

func (r *escrowRepository) AddOrUpdateEscrow(
	_ context.Context, escrow domain.Escrow,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	escrow.Changes = nil
	r.escrows[escrow.Id] = escrow
	return nil
}

func (r *escrowRepository) GetEscrowWithId(
	_ context.Context, id string,
) (*domain.Escrow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	escrow, ok := r.escrows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEscrowNotFound, id)
	}
	return &escrow, nil
}

func (r *escrowRepository) GetActiveEscrows(
	_ context.Context,
) ([]domain.Escrow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	escrows := make([]domain.Escrow, 0)
	for _, escrow := range r.escrows {
		if escrow.IsActive() {
			escrows = append(escrows, escrow)
		}
	}
	return escrows, nil
}

func (r *escrowRepository) GetEscrowsWithSecretHash(
	_ context.Context, secretHash []byte,
) ([]domain.Escrow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	escrows := make([]domain.Escrow, 0)
	for _, escrow := range r.escrows {
		if bytes.Equal(escrow.Hashlock.Digest, secretHash) {
			escrows = append(escrows, escrow)
		}
	}
	return escrows, nil
}

func (r *escrowRepository) GetExpiredEscrows(
	_ context.Context,
) ([]domain.Escrow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	now := time.Now().Unix()
	escrows := make([]domain.Escrow, 0)
	for _, escrow := range r.escrows {
		if escrow.IsActive() && escrow.Timelock.ExpirationTime() <= now {
			escrows = append(escrows, escrow)
		}
	}
	return escrows, nil
}

func (r *escrowRepository) Close() {}
