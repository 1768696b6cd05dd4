package domain

import "errors"

var (
	// ErrInvalidAmount is returned when an escrow or order is created with a
	// zero asset amount.
	ErrInvalidAmount = errors.New("invalid asset amount")
	// ErrInvalidHash is returned when a committed secret hash is not exactly
	// 32 bytes long.
	ErrInvalidHash = errors.New("invalid secret hash")
	// ErrInvalidSecret is returned when a candidate secret is empty or does
	// not hash to the committed value.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrInvalidPhase is returned when an operation is attempted outside its
	// permitted timelock phase.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	// ErrInvalidCaller is returned when the caller lacks authorization for the
	// current operation and phase.
	ErrInvalidCaller = errors.New("caller not authorized")
	// ErrInvalidResolver is returned when the caller is not an active,
	// registered resolver.
	ErrInvalidResolver = errors.New("not an active resolver")
	// ErrEscrowNotFound is returned when the referenced escrow does not exist
	// or has already been consumed.
	ErrEscrowNotFound = errors.New("escrow not found")
	// ErrOrderNotFound is returned when the referenced order does not exist or
	// has already been consumed or cancelled.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientBalance is returned when the asset ledger cannot satisfy
	// a withdrawal.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
