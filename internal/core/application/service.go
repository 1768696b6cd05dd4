package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/swaplock/swapd/internal/core/ports"
)

type Service interface {
	Start() error
	Stop()

	CreateOrder(ctx context.Context, params domain.NewOrderParams) (string, error)
	CancelOrder(ctx context.Context, caller, orderId string) error
	QuoteOrder(ctx context.Context, orderId string) (uint64, error)
	GetOrder(ctx context.Context, orderId string) (*domain.Order, error)

	CreateEscrowFromOrder(ctx context.Context, resolver, orderId string) (string, error)
	CreateEscrowFromResolver(
		ctx context.Context, resolver, recipient, assetKind string,
		amount, chainId uint64, secretHash []byte,
	) (string, error)
	WithdrawEscrow(ctx context.Context, caller, escrowId string, secret []byte) error
	RecoverEscrow(ctx context.Context, caller, escrowId string) error

	GetEscrow(ctx context.Context, escrowId string) (*domain.Escrow, error)
	ListEscrowsWithSecretHash(ctx context.Context, secretHash []byte) ([]domain.Escrow, error)
	GetEventsChannel(ctx context.Context) <-chan domain.EscrowEvent
}

// Config carries the protocol constants of the service: which chain id makes
// an escrow take the source role, the protocol-wide safety deposit, and the
// per-role phase duration tables stamped into every new timelock.
type Config struct {
	HomeChainId          uint64
	SafetyDepositAsset   string
	SafetyDepositAmount  uint64
	SourceDurations      domain.PhaseDurations
	DestinationDurations domain.PhaseDurations
}

type service struct {
	cfg Config

	ledger      ports.AssetLedger
	registry    ports.ResolverRegistry
	repoManager ports.RepoManager
	scheduler   ports.SchedulerService

	watcher  *watcher
	eventsCh chan domain.EscrowEvent
}

func NewService(
	cfg Config,
	ledger ports.AssetLedger, registry ports.ResolverRegistry,
	repoManager ports.RepoManager, scheduler ports.SchedulerService,
) (Service, error) {
	if cfg.SafetyDepositAmount == 0 {
		return nil, fmt.Errorf("missing safety deposit amount")
	}
	if len(cfg.SafetyDepositAsset) == 0 {
		return nil, fmt.Errorf("missing safety deposit asset")
	}

	svc := &service{
		cfg:         cfg,
		ledger:      ledger,
		registry:    registry,
		repoManager: repoManager,
		scheduler:   scheduler,
		eventsCh:    make(chan domain.EscrowEvent, 128),
	}
	svc.watcher = newWatcher(repoManager, scheduler)
	repoManager.RegisterEventsHandler(
		func(escrow *domain.Escrow) {
			svc.updateProjectionStore(escrow)
			svc.propagateEvents(escrow)
		},
	)
	return svc, nil
}

func (s *service) Start() error {
	log.Debug("starting app service")
	s.scheduler.Start()
	return s.watcher.start()
}

func (s *service) Stop() {
	s.watcher.stop()
	s.scheduler.Stop()
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

func (s *service) CreateOrder(
	ctx context.Context, params domain.NewOrderParams,
) (string, error) {
	now := time.Now().Unix()
	order, err := domain.NewOrder(params, now)
	if err != nil {
		return "", err
	}

	// Stage the user's asset into the order custody account.
	if err := s.ledger.Withdraw(ctx, order.Owner, order.AssetKind, order.AssetAmount); err != nil {
		return "", err
	}
	if err := s.ledger.Deposit(ctx, order.Address(), order.AssetKind, order.AssetAmount); err != nil {
		return "", err
	}

	if err := s.repoManager.Orders().AddOrder(ctx, *order); err != nil {
		s.refund(ctx, order.Address(), order.Owner, order.AssetKind, order.AssetAmount)
		return "", err
	}

	log.Debugf("created order %s for %d %s", order.Id, order.AssetAmount, order.AssetKind)
	return order.Id, nil
}

func (s *service) CancelOrder(ctx context.Context, caller, orderId string) error {
	order, err := s.repoManager.Orders().GetOrderWithId(ctx, orderId)
	if err != nil {
		return err
	}
	if caller != order.Owner {
		return fmt.Errorf("%w: only the order owner may cancel", domain.ErrInvalidCaller)
	}

	if err := s.repoManager.Orders().DeleteOrder(ctx, orderId); err != nil {
		return err
	}

	s.refund(ctx, order.Address(), order.Owner, order.AssetKind, order.AssetAmount)
	log.Debugf("cancelled order %s", orderId)
	return nil
}

func (s *service) QuoteOrder(ctx context.Context, orderId string) (uint64, error) {
	order, err := s.repoManager.Orders().GetOrderWithId(ctx, orderId)
	if err != nil {
		return 0, err
	}
	return order.QuoteDestinationAmount(time.Now().Unix()), nil
}

func (s *service) GetOrder(ctx context.Context, orderId string) (*domain.Order, error) {
	return s.repoManager.Orders().GetOrderWithId(ctx, orderId)
}

// CreateEscrowFromOrder atomically consumes a staged order: the user's asset
// leg moves from the order custody account, the safety deposit is pulled from
// the resolver, and the source-leg escrow is created with the resolver as
// recipient.
func (s *service) CreateEscrowFromOrder(
	ctx context.Context, resolver, orderId string,
) (string, error) {
	if !s.registry.IsActiveResolver(ctx, resolver) {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidResolver, resolver)
	}

	order, err := s.repoManager.Orders().GetOrderWithId(ctx, orderId)
	if err != nil {
		return "", err
	}

	params := domain.CreateEscrowParams{
		From:          order.Owner,
		To:            resolver,
		Resolver:      resolver,
		AssetKind:     order.AssetKind,
		AssetAmount:   order.AssetAmount,
		SafetyDeposit: s.cfg.SafetyDepositAmount,
		ChainId:       order.ChainId,
		SecretHash:    order.SecretHash,
	}

	// Consume the order first so it cannot be accepted twice; restore it if
	// the escrow could not be funded.
	if err := s.repoManager.Orders().DeleteOrder(ctx, orderId); err != nil {
		return "", err
	}

	escrowId, err := s.createEscrow(ctx, params, order.Address(), resolver)
	if err != nil {
		if restoreErr := s.repoManager.Orders().AddOrder(ctx, *order); restoreErr != nil {
			log.WithError(restoreErr).Warnf("failed to restore order %s", orderId)
		}
		return "", err
	}

	return escrowId, nil
}

// CreateEscrowFromResolver funds a new escrow entirely from the resolver's own
// balance. This is the destination-leg path, or a directly created source leg.
func (s *service) CreateEscrowFromResolver(
	ctx context.Context, resolver, recipient, assetKind string,
	amount, chainId uint64, secretHash []byte,
) (string, error) {
	params := domain.CreateEscrowParams{
		From:          resolver,
		To:            recipient,
		Resolver:      resolver,
		AssetKind:     assetKind,
		AssetAmount:   amount,
		SafetyDeposit: s.cfg.SafetyDepositAmount,
		ChainId:       chainId,
		SecretHash:    secretHash,
	}
	return s.createEscrow(ctx, params, resolver, resolver)
}

func (s *service) WithdrawEscrow(
	ctx context.Context, caller, escrowId string, secret []byte,
) error {
	escrow, err := s.loadActiveEscrow(ctx, escrowId)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	changes, err := escrow.Withdraw(caller, secret, now)
	if err != nil {
		return err
	}

	addr := escrow.Address()
	if err := s.move(ctx, addr, escrow.To, escrow.AssetKind, escrow.AssetAmount); err != nil {
		return err
	}
	if err := s.move(ctx, addr, caller, s.cfg.SafetyDepositAsset, escrow.SafetyDeposit); err != nil {
		s.refund(ctx, escrow.To, addr, escrow.AssetKind, escrow.AssetAmount)
		return err
	}

	if _, err := s.repoManager.Events().Save(ctx, escrow.Id, changes...); err != nil {
		s.refund(ctx, escrow.To, addr, escrow.AssetKind, escrow.AssetAmount)
		s.refund(ctx, caller, addr, s.cfg.SafetyDepositAsset, escrow.SafetyDeposit)
		return err
	}

	log.Debugf(
		"withdrawn escrow %s: %d %s to %s",
		escrow.Id, escrow.AssetAmount, escrow.AssetKind, escrow.To,
	)
	return nil
}

func (s *service) RecoverEscrow(ctx context.Context, caller, escrowId string) error {
	escrow, err := s.loadActiveEscrow(ctx, escrowId)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	changes, err := escrow.Recover(caller, now)
	if err != nil {
		return err
	}

	addr := escrow.Address()
	if err := s.move(ctx, addr, escrow.From, escrow.AssetKind, escrow.AssetAmount); err != nil {
		return err
	}
	if err := s.move(ctx, addr, caller, s.cfg.SafetyDepositAsset, escrow.SafetyDeposit); err != nil {
		s.refund(ctx, escrow.From, addr, escrow.AssetKind, escrow.AssetAmount)
		return err
	}

	if _, err := s.repoManager.Events().Save(ctx, escrow.Id, changes...); err != nil {
		s.refund(ctx, escrow.From, addr, escrow.AssetKind, escrow.AssetAmount)
		s.refund(ctx, caller, addr, s.cfg.SafetyDepositAsset, escrow.SafetyDeposit)
		return err
	}

	log.Debugf(
		"recovered escrow %s: %d %s back to %s, safety deposit to %s",
		escrow.Id, escrow.AssetAmount, escrow.AssetKind, escrow.From, caller,
	)
	return nil
}

func (s *service) GetEscrow(ctx context.Context, escrowId string) (*domain.Escrow, error) {
	escrow, err := s.repoManager.Escrows().GetEscrowWithId(ctx, escrowId)
	if err != nil {
		return nil, domain.ErrEscrowNotFound
	}
	return escrow, nil
}

func (s *service) ListEscrowsWithSecretHash(
	ctx context.Context, secretHash []byte,
) ([]domain.Escrow, error) {
	return s.repoManager.Escrows().GetEscrowsWithSecretHash(ctx, secretHash)
}

func (s *service) GetEventsChannel(ctx context.Context) <-chan domain.EscrowEvent {
	return s.eventsCh
}

// createEscrow is the internal constructor both creation paths funnel into.
// The timelock role is selected by comparing the destination chain id against
// the home chain, the asset leg is pulled from assetSource and the safety
// deposit from the resolver, and nothing is persisted unless both custody
// moves succeeded.
func (s *service) createEscrow(
	ctx context.Context, params domain.CreateEscrowParams, assetSource, resolver string,
) (string, error) {
	params.Role = domain.RoleForChain(params.ChainId, s.cfg.HomeChainId)
	params.Durations = s.cfg.SourceDurations
	if params.Role == domain.DestinationRole {
		params.Durations = s.cfg.DestinationDurations
	}

	escrow := domain.NewEscrow()
	now := time.Now().Unix()
	changes, err := escrow.Create(params, now)
	if err != nil {
		return "", err
	}

	addr := escrow.Address()
	if err := s.move(ctx, assetSource, addr, params.AssetKind, params.AssetAmount); err != nil {
		return "", err
	}
	if err := s.move(ctx, resolver, addr, s.cfg.SafetyDepositAsset, params.SafetyDeposit); err != nil {
		s.refund(ctx, addr, assetSource, params.AssetKind, params.AssetAmount)
		return "", err
	}

	if _, err := s.repoManager.Events().Save(ctx, escrow.Id, changes...); err != nil {
		s.refund(ctx, addr, assetSource, params.AssetKind, params.AssetAmount)
		s.refund(ctx, addr, resolver, s.cfg.SafetyDepositAsset, params.SafetyDeposit)
		return "", err
	}

	s.watcher.watch(*escrow)

	log.Debugf(
		"created %s escrow %s for %d %s (chain %d)",
		escrow.Timelock.Role, escrow.Id, escrow.AssetAmount, escrow.AssetKind, escrow.ChainId,
	)
	return escrow.Id, nil
}

func (s *service) loadActiveEscrow(
	ctx context.Context, escrowId string,
) (*domain.Escrow, error) {
	escrow, err := s.repoManager.Escrows().GetEscrowWithId(ctx, escrowId)
	if err != nil {
		return nil, domain.ErrEscrowNotFound
	}
	if !escrow.IsActive() {
		return nil, domain.ErrEscrowNotFound
	}
	return escrow, nil
}

func (s *service) move(ctx context.Context, from, to, assetKind string, amount uint64) error {
	if err := s.ledger.Withdraw(ctx, from, assetKind, amount); err != nil {
		return err
	}
	return s.ledger.Deposit(ctx, to, assetKind, amount)
}

// refund is the compensation path: it moves funds back after a later step of
// an operation failed, so callers observe all-or-nothing semantics.
func (s *service) refund(ctx context.Context, from, to, assetKind string, amount uint64) {
	if err := s.move(ctx, from, to, assetKind, amount); err != nil {
		log.WithError(err).Warnf(
			"failed to refund %d %s from %s to %s", amount, assetKind, from, to,
		)
	}
}

func (s *service) updateProjectionStore(escrow *domain.Escrow) {
	ctx := context.Background()
	for {
		if err := s.repoManager.Escrows().AddOrUpdateEscrow(ctx, *escrow); err != nil {
			log.WithError(err).Warn("failed to update escrow projection, retrying soon")
			time.Sleep(100 * time.Millisecond)
			continue
		}
		break
	}
}

func (s *service) propagateEvents(escrow *domain.Escrow) {
	events := escrow.Events()
	if len(events) == 0 {
		return
	}
	lastEvent := events[len(events)-1]
	switch e := lastEvent.(type) {
	case domain.EscrowCreated, domain.EscrowWithdrawn, domain.EscrowRecovered:
		s.eventsCh <- e
	}
}
