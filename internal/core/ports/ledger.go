package ports

import "context"

// AssetLedger is the fungible-asset custody primitive the escrow core moves
// funds through. Withdraw debits the owner or fails with
// domain.ErrInsufficientBalance; every debit is paired with a deposit so no
// amount is ever created or destroyed by the core.
type AssetLedger interface {
	Withdraw(ctx context.Context, owner, assetKind string, amount uint64) error
	Deposit(ctx context.Context, owner, assetKind string, amount uint64) error
	BalanceOf(ctx context.Context, owner, assetKind string) (uint64, error)
}
