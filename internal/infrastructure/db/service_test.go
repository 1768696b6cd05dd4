package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/swaplock/swapd/internal/core/ports"
	"github.com/swaplock/swapd/internal/infrastructure/db"
)

var (
	testSecret     = []byte("the committed swap secret")
	testSecretHash = domain.HashSecret(testSecret)

	testDurations = domain.PhaseDurations{
		Withdrawal:       10,
		PublicWithdrawal: 100,
		Cancellation:     50,
	}
)

func TestService(t *testing.T) {
	tests := []struct {
		name   string
		config db.ServiceConfig
	}{
		{
			name: "repo_manager_with_badger_stores",
			config: db.ServiceConfig{
				EventStoreType:   "badger",
				DataStoreType:    "badger",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{"", nil},
			},
		},
		{
			name: "repo_manager_with_inmemory_stores",
			config: db.ServiceConfig{
				EventStoreType:   "inmemory",
				DataStoreType:    "inmemory",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{"", nil},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := db.NewService(tt.config)
			require.NoError(t, err)
			defer svc.Close()

			testEventRepository(t, svc)
			testEscrowRepository(t, svc)
			testOrderRepository(t, svc)
		})
	}
}

func testEventRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_event_repository", func(t *testing.T) {
		ctx := context.Background()

		escrowId := uuid.New().String()
		created := domain.EscrowCreated{
			Id:            escrowId,
			From:          "alice",
			To:            "resolver",
			Resolver:      "resolver",
			AssetKind:     "tokenA",
			AssetAmount:   1000,
			SafetyDeposit: 50,
			ChainId:       1,
			IsSourceChain: true,
			SecretHash:    testSecretHash,
			CreatedAt:     1701190270,
			Role:          domain.SourceRole,
			Durations:     testDurations,
			Timestamp:     1701190270,
		}

		handlerCalled := make(chan *domain.Escrow, 2)
		svc.RegisterEventsHandler(func(escrow *domain.Escrow) {
			handlerCalled <- escrow
		})

		escrow, err := svc.Events().Save(ctx, escrowId, created)
		require.NoError(t, err)
		require.NotNil(t, escrow)
		require.True(t, escrow.IsActive())

		escrow, err = svc.Events().Load(ctx, escrowId)
		require.NoError(t, err)
		require.Equal(t, escrowId, escrow.Id)
		require.Len(t, escrow.Events(), 1)
		require.Equal(t, testSecretHash, escrow.Hashlock.Digest)
		require.Equal(t, testDurations, escrow.Timelock.Durations)

		select {
		case updated := <-handlerCalled:
			require.Equal(t, escrowId, updated.Id)
			require.True(t, updated.IsActive())
		case <-time.After(2 * time.Second):
			t.Fatal("events handler was not called")
		}

		withdrawn := domain.EscrowWithdrawn{
			Id:          escrowId,
			Recipient:   "resolver",
			Resolver:    "resolver",
			AssetKind:   "tokenA",
			AssetAmount: 1000,
			Secret:      testSecret,
			Timestamp:   1701190280,
		}
		escrow, err = svc.Events().Save(ctx, escrowId, withdrawn)
		require.NoError(t, err)
		require.Equal(t, domain.WithdrawnStage, escrow.Stage)

		escrow, err = svc.Events().Load(ctx, escrowId)
		require.NoError(t, err)
		require.Len(t, escrow.Events(), 2)
		require.Equal(t, domain.WithdrawnStage, escrow.Stage)

		select {
		case updated := <-handlerCalled:
			require.Equal(t, domain.WithdrawnStage, updated.Stage)
		case <-time.After(2 * time.Second):
			t.Fatal("events handler was not called")
		}

		_, err = svc.Events().Load(ctx, uuid.New().String())
		require.ErrorIs(t, err, domain.ErrEscrowNotFound)
	})
}

func testEscrowRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_escrow_repository", func(t *testing.T) {
		ctx := context.Background()
		now := time.Now().Unix()

		active := newTestEscrow(t, now)
		expired := newTestEscrow(t, now-testDurations.Withdrawal-
			testDurations.PublicWithdrawal-testDurations.Cancellation-1)

		require.NoError(t, svc.Escrows().AddOrUpdateEscrow(ctx, *active))
		require.NoError(t, svc.Escrows().AddOrUpdateEscrow(ctx, *expired))

		got, err := svc.Escrows().GetEscrowWithId(ctx, active.Id)
		require.NoError(t, err)
		require.Equal(t, active.Id, got.Id)
		require.Equal(t, active.Timelock, got.Timelock)

		_, err = svc.Escrows().GetEscrowWithId(ctx, uuid.New().String())
		require.ErrorIs(t, err, domain.ErrEscrowNotFound)

		actives, err := svc.Escrows().GetActiveEscrows(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(actives), 2)

		withHash, err := svc.Escrows().GetEscrowsWithSecretHash(ctx, testSecretHash)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(withHash), 2)
		otherHash, err := svc.Escrows().GetEscrowsWithSecretHash(
			ctx, domain.HashSecret([]byte("some other secret")),
		)
		require.NoError(t, err)
		require.Empty(t, otherHash)

		expiredList, err := svc.Escrows().GetExpiredEscrows(ctx)
		require.NoError(t, err)
		expiredIds := make([]string, 0, len(expiredList))
		for _, escrow := range expiredList {
			expiredIds = append(expiredIds, escrow.Id)
		}
		require.Contains(t, expiredIds, expired.Id)
		require.NotContains(t, expiredIds, active.Id)

		// a terminal escrow leaves the active set
		_, err = active.Withdraw("resolver", testSecret, now)
		require.NoError(t, err)
		require.NoError(t, svc.Escrows().AddOrUpdateEscrow(ctx, *active))

		got, err = svc.Escrows().GetEscrowWithId(ctx, active.Id)
		require.NoError(t, err)
		require.Equal(t, domain.WithdrawnStage, got.Stage)
		for _, escrow := range mustActive(t, svc) {
			require.NotEqual(t, active.Id, escrow.Id)
		}
	})
}

func testOrderRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_order_repository", func(t *testing.T) {
		ctx := context.Background()

		order, err := domain.NewOrder(domain.NewOrderParams{
			Owner:           "alice",
			AssetKind:       "tokenA",
			AssetAmount:     1000,
			ChainId:         1,
			SecretHash:      testSecretHash,
			StartAmount:     2000,
			EndAmount:       1000,
			AuctionDuration: 100,
		}, time.Now().Unix())
		require.NoError(t, err)

		require.NoError(t, svc.Orders().AddOrder(ctx, *order))
		require.Error(t, svc.Orders().AddOrder(ctx, *order))

		got, err := svc.Orders().GetOrderWithId(ctx, order.Id)
		require.NoError(t, err)
		require.Equal(t, order.Id, got.Id)
		require.Equal(t, order.SecretHash, got.SecretHash)

		_, err = svc.Orders().GetOrderWithId(ctx, uuid.New().String())
		require.ErrorIs(t, err, domain.ErrOrderNotFound)

		withOwner, err := svc.Orders().GetOrdersWithOwner(ctx, "alice")
		require.NoError(t, err)
		require.NotEmpty(t, withOwner)
		noOrders, err := svc.Orders().GetOrdersWithOwner(ctx, "nobody")
		require.NoError(t, err)
		require.Empty(t, noOrders)

		require.NoError(t, svc.Orders().DeleteOrder(ctx, order.Id))
		err = svc.Orders().DeleteOrder(ctx, order.Id)
		require.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func newTestEscrow(t *testing.T, createdAt int64) *domain.Escrow {
	t.Helper()

	escrow := domain.NewEscrow()
	_, err := escrow.Create(domain.CreateEscrowParams{
		From:          "alice",
		To:            "resolver",
		Resolver:      "resolver",
		AssetKind:     "tokenA",
		AssetAmount:   1000,
		SafetyDeposit: 50,
		ChainId:       1,
		SecretHash:    testSecretHash,
		Role:          domain.SourceRole,
		Durations:     testDurations,
	}, createdAt)
	require.NoError(t, err)
	return escrow
}

func mustActive(t *testing.T, svc ports.RepoManager) []domain.Escrow {
	t.Helper()

	escrows, err := svc.Escrows().GetActiveEscrows(context.Background())
	require.NoError(t, err)
	return escrows
}
