package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/google/uuid"
	"golang.org/x/crypto/ripemd160"
)

const (
	UndefinedStage EscrowStage = iota
	ActiveStage
	WithdrawnStage
	RecoveredStage
)

type EscrowStage int

func (s EscrowStage) String() string {
	switch s {
	case ActiveStage:
		return "ACTIVE_STAGE"
	case WithdrawnStage:
		return "WITHDRAWN_STAGE"
	case RecoveredStage:
		return "RECOVERED_STAGE"
	default:
		return "UNDEFINED_STAGE"
	}
}

// Escrow is the custody aggregate of one leg of a cross-chain swap. It owns
// the escrowed asset leg plus the resolver-funded safety deposit, and releases
// them through exactly one of Withdraw or Recover. The aggregate is
// event-sourced: every legal transition raises an EscrowEvent and state is
// rebuilt by replaying them.
type Escrow struct {
	Id            string
	From          string
	To            string
	Resolver      string
	AssetKind     string
	AssetAmount   uint64
	SafetyDeposit uint64
	ChainId       uint64
	Timelock      Timelock
	Hashlock      Hashlock
	Stage         EscrowStage
	Version       uint
	Changes       []EscrowEvent
}

// CreateEscrowParams carries everything the internal constructor needs. Both
// creation paths (from an accepted order, or directly from a resolver) build
// one of these.
type CreateEscrowParams struct {
	From          string
	To            string
	Resolver      string
	AssetKind     string
	AssetAmount   uint64
	SafetyDeposit uint64
	ChainId       uint64
	SecretHash    []byte
	Role          TimelockRole
	Durations     PhaseDurations
}

func NewEscrow() *Escrow {
	return &Escrow{
		Id:      uuid.New().String(),
		Changes: make([]EscrowEvent, 0),
	}
}

func NewEscrowFromEvents(events []EscrowEvent) *Escrow {
	e := &Escrow{}

	for _, event := range events {
		e.On(event, true)
	}

	e.Changes = append([]EscrowEvent{}, events...)

	return e
}

func (e *Escrow) On(event EscrowEvent, replayed bool) {
	switch ev := event.(type) {
	case EscrowCreated:
		e.Id = ev.Id
		e.From = ev.From
		e.To = ev.To
		e.Resolver = ev.Resolver
		e.AssetKind = ev.AssetKind
		e.AssetAmount = ev.AssetAmount
		e.SafetyDeposit = ev.SafetyDeposit
		e.ChainId = ev.ChainId
		e.Timelock = Timelock{
			CreatedAt: ev.CreatedAt,
			Role:      ev.Role,
			Durations: ev.Durations,
		}
		e.Hashlock = Hashlock{Digest: ev.SecretHash}
		e.Stage = ActiveStage
	case EscrowWithdrawn:
		e.Stage = WithdrawnStage
	case EscrowRecovered:
		e.Stage = RecoveredStage
	}

	if replayed {
		e.Version++
	}
}

// Create validates the construction parameters and raises EscrowCreated. The
// caller is responsible for funding the escrow account atomically with
// persisting the event.
func (e *Escrow) Create(params CreateEscrowParams, now int64) ([]EscrowEvent, error) {
	if e.Stage != UndefinedStage {
		return nil, fmt.Errorf("escrow %s already created", e.Id)
	}
	if params.AssetAmount == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	hashlock, err := NewHashlock(params.SecretHash)
	if err != nil {
		return nil, err
	}
	timelock, err := NewTimelock(now, params.Role, params.Durations)
	if err != nil {
		return nil, err
	}

	event := EscrowCreated{
		Id:            e.Id,
		From:          params.From,
		To:            params.To,
		Resolver:      params.Resolver,
		AssetKind:     params.AssetKind,
		AssetAmount:   params.AssetAmount,
		SafetyDeposit: params.SafetyDeposit,
		ChainId:       params.ChainId,
		IsSourceChain: params.To == params.Resolver,
		SecretHash:    hashlock.Digest,
		CreatedAt:     timelock.CreatedAt,
		Role:          timelock.Role,
		Durations:     timelock.Durations,
		Timestamp:     now,
	}
	e.raise(event)

	return []EscrowEvent{event}, nil
}

// Withdraw releases the asset leg to the recipient. Preconditions are checked
// in protocol order so each failure surfaces as its own error: caller, then
// phase, then secret. Only the managing resolver may ever withdraw.
func (e *Escrow) Withdraw(caller string, secret []byte, now int64) ([]EscrowEvent, error) {
	if e.Stage != ActiveStage {
		return nil, ErrEscrowNotFound
	}
	if caller != e.Resolver {
		return nil, fmt.Errorf("%w: only the managing resolver may withdraw", ErrInvalidCaller)
	}
	if !e.Timelock.IsWithdrawalAllowed(now) {
		return nil, fmt.Errorf(
			"%w: withdrawal not allowed in %s", ErrInvalidPhase, e.Timelock.Phase(now),
		)
	}
	if err := e.Hashlock.Verify(secret); err != nil {
		return nil, err
	}

	event := EscrowWithdrawn{
		Id:          e.Id,
		Recipient:   e.To,
		Resolver:    e.Resolver,
		AssetKind:   e.AssetKind,
		AssetAmount: e.AssetAmount,
		Secret:      secret,
		Timestamp:   now,
	}
	e.raise(event)

	return []EscrowEvent{event}, nil
}

// Recover returns the asset leg to the original depositor. During the private
// cancellation window only the resolver may recover; in the public window
// (source leg only) any caller may, and is rewarded with the safety deposit.
func (e *Escrow) Recover(caller string, now int64) ([]EscrowEvent, error) {
	if e.Stage != ActiveStage {
		return nil, ErrEscrowNotFound
	}
	if !e.Timelock.IsCancellationAllowed(now) {
		return nil, fmt.Errorf(
			"%w: cancellation not allowed in %s", ErrInvalidPhase, e.Timelock.Phase(now),
		)
	}
	if !e.Timelock.IsPublicCancellation(now) && caller != e.Resolver {
		return nil, fmt.Errorf(
			"%w: only the managing resolver may recover before the public window",
			ErrInvalidCaller,
		)
	}

	event := EscrowRecovered{
		Id:          e.Id,
		RecoveredBy: caller,
		ReturnedTo:  e.From,
		AssetKind:   e.AssetKind,
		AssetAmount: e.AssetAmount,
		Timestamp:   now,
	}
	e.raise(event)

	return []EscrowEvent{event}, nil
}

// IsSourceChain classifies the leg. The equality is the sole signal used
// anywhere to tell the two legs apart.
func (e *Escrow) IsSourceChain() bool {
	return e.To == e.Resolver
}

func (e *Escrow) IsActive() bool {
	return e.Stage == ActiveStage
}

func (e *Escrow) IsTerminal() bool {
	return e.Stage == WithdrawnStage || e.Stage == RecoveredStage
}

// Address derives the ledger account that holds both custodied legs while the
// escrow is active: hash160 over the escrow id and the committed digest.
func (e *Escrow) Address() string {
	return EscrowAddress(e.Id, e.Hashlock.Digest)
}

func (e *Escrow) Events() []EscrowEvent {
	return e.Changes
}

func (e *Escrow) raise(event EscrowEvent) {
	if e.Changes == nil {
		e.Changes = make([]EscrowEvent, 0)
	}
	e.Changes = append(e.Changes, event)
	e.On(event, false)
}

// EscrowAddress derives the custody account address for an escrow identity
// and committed digest.
func EscrowAddress(id string, digest []byte) string {
	calcHash := func(buf []byte, hasher hash.Hash) []byte {
		_, _ = hasher.Write(buf)
		return hasher.Sum(nil)
	}

	hash160 := func(buf []byte) []byte {
		return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
	}

	buf := append([]byte(id), digest...)
	return hex.EncodeToString(hash160(buf))
}
