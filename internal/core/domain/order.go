package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Order is a user intent staged on the source chain, waiting for a resolver to
// accept it and convert it into an escrow. The auction fields are only used to
// quote a destination amount off-chain; nothing in the escrow machinery
// enforces the quoted price.
type Order struct {
	Id          string
	Owner       string
	AssetKind   string
	AssetAmount uint64
	ChainId     uint64
	SecretHash  []byte

	// Dutch-auction quote parameters: the destination amount decays linearly
	// from StartAmount to EndAmount over AuctionDuration seconds.
	StartAmount     uint64
	EndAmount       uint64
	AuctionStart    int64
	AuctionDuration int64

	CreatedAt int64
}

type NewOrderParams struct {
	Owner           string
	AssetKind       string
	AssetAmount     uint64
	ChainId         uint64
	SecretHash      []byte
	StartAmount     uint64
	EndAmount       uint64
	AuctionDuration int64
}

func NewOrder(params NewOrderParams, now int64) (*Order, error) {
	if params.AssetAmount == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	if len(params.SecretHash) != SecretHashSize {
		return nil, fmt.Errorf(
			"%w: must be exactly %d bytes, got %d",
			ErrInvalidHash, SecretHashSize, len(params.SecretHash),
		)
	}
	if params.StartAmount < params.EndAmount {
		return nil, fmt.Errorf("start amount must not be lower than end amount")
	}
	if params.AuctionDuration <= 0 {
		return nil, fmt.Errorf("auction duration must be positive")
	}

	return &Order{
		Id:              uuid.New().String(),
		Owner:           params.Owner,
		AssetKind:       params.AssetKind,
		AssetAmount:     params.AssetAmount,
		ChainId:         params.ChainId,
		SecretHash:      params.SecretHash,
		StartAmount:     params.StartAmount,
		EndAmount:       params.EndAmount,
		AuctionStart:    now,
		AuctionDuration: params.AuctionDuration,
		CreatedAt:       now,
	}, nil
}

// QuoteDestinationAmount returns the destination amount a resolver is expected
// to fund if it accepts the order at the given time, decaying linearly over
// the auction window and clamped to EndAmount afterwards.
func (o *Order) QuoteDestinationAmount(now int64) uint64 {
	elapsed := now - o.AuctionStart
	if elapsed <= 0 {
		return o.StartAmount
	}
	if elapsed >= o.AuctionDuration {
		return o.EndAmount
	}
	decay := uint64(elapsed) * (o.StartAmount - o.EndAmount) / uint64(o.AuctionDuration)
	return o.StartAmount - decay
}

// Address derives the ledger account holding the staged asset while the order
// is open.
func (o *Order) Address() string {
	return EscrowAddress(o.Id, o.SecretHash)
}
