package badgerdb

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const escrowStoreDir = "escrows"

type escrowRepository struct {
	store *badgerhold.Store
}

func NewEscrowRepository(config ...interface{}) (domain.EscrowRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, escrowStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open escrow store: %s", err)
	}

	return &escrowRepository{store}, nil
}

func (r *escrowRepository) AddOrUpdateEscrow(
	ctx context.Context, escrow domain.Escrow,
) error {
	// events live in their own store, the projection only keeps state
	escrow.Changes = nil

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxUpsert(tx, escrow.Id, escrow)
	}
	return r.store.Upsert(escrow.Id, escrow)
}

func (r *escrowRepository) GetEscrowWithId(
	ctx context.Context, id string,
) (*domain.Escrow, error) {
	query := badgerhold.Where("Id").Eq(id)
	escrows, err := r.findEscrow(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(escrows) <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEscrowNotFound, id)
	}
	escrow := &escrows[0]
	return escrow, nil
}

func (r *escrowRepository) GetActiveEscrows(
	ctx context.Context,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("Stage").Eq(domain.ActiveStage)
	return r.findEscrow(ctx, query)
}

func (r *escrowRepository) GetEscrowsWithSecretHash(
	ctx context.Context, secretHash []byte,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("Hashlock.Digest").MatchFunc(
		func(ra *badgerhold.RecordAccess) (bool, error) {
			digest, ok := ra.Field().([]byte)
			if !ok {
				return false, nil
			}
			return bytes.Equal(digest, secretHash), nil
		},
	)
	return r.findEscrow(ctx, query)
}

func (r *escrowRepository) GetExpiredEscrows(
	ctx context.Context,
) ([]domain.Escrow, error) {
	now := time.Now().Unix()
	query := badgerhold.Where("Stage").Eq(domain.ActiveStage).
		And("Id").MatchFunc(
		func(ra *badgerhold.RecordAccess) (bool, error) {
			escrow, ok := ra.Record().(*domain.Escrow)
			if !ok {
				return false, nil
			}
			return escrow.Timelock.ExpirationTime() <= now, nil
		},
	)
	return r.findEscrow(ctx, query)
}

func (r *escrowRepository) Close() {
	r.store.Close()
}

func (r *escrowRepository) findEscrow(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Escrow, error) {
	var escrows []domain.Escrow
	var err error

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &escrows, query)
	} else {
		err = r.store.Find(&escrows, query)
	}

	return escrows, err
}
