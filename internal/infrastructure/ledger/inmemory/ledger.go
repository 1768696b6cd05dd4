package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/swaplock/swapd/internal/core/ports"
)

type balanceKey struct {
	owner     string
	assetKind string
}

type ledger struct {
	lock     *sync.RWMutex
	balances map[balanceKey]uint64
}

func NewAssetLedger() ports.AssetLedger {
	return &ledger{
		lock:     &sync.RWMutex{},
		balances: make(map[balanceKey]uint64),
	}
}

func (l *ledger) Withdraw(
	_ context.Context, owner, assetKind string, amount uint64,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	key := balanceKey{owner, assetKind}
	balance := l.balances[key]
	if balance < amount {
		return fmt.Errorf(
			"%w: %s holds %d %s, need %d",
			domain.ErrInsufficientBalance, owner, balance, assetKind, amount,
		)
	}
	l.balances[key] = balance - amount
	return nil
}

func (l *ledger) Deposit(
	_ context.Context, owner, assetKind string, amount uint64,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	key := balanceKey{owner, assetKind}
	l.balances[key] += amount
	return nil
}

func (l *ledger) BalanceOf(
	_ context.Context, owner, assetKind string,
) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.balances[balanceKey{owner, assetKind}], nil
}
