package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const orderStoreDir = "orders"

type orderRepository struct {
	store *badgerhold.Store
}

func NewOrderRepository(config ...interface{}) (domain.OrderRepository, error) {
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
		dir = filepath.Join(baseDir, orderStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %s", err)
	}

	return &orderRepository{store}, nil
}

func (r *orderRepository) AddOrder(ctx context.Context, order domain.Order) error {
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxInsert(tx, order.Id, order)
	} else {
		err = r.store.Insert(order.Id, order)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("order %s already exists", order.Id)
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetOrderWithId(
	ctx context.Context, id string,
) (*domain.Order, error) {
	var order domain.Order
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, id, &order)
	} else {
		err = r.store.Get(id, &order)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrdersWithOwner(
	ctx context.Context, owner string,
) ([]domain.Order, error) {
	query := badgerhold.Where("Owner").Eq(owner)

	var orders []domain.Order
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &orders, query)
	} else {
		err = r.store.Find(&orders, query)
	}
	return orders, err
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxDelete(tx, id, domain.Order{})
	} else {
		err = r.store.Delete(id, domain.Order{})
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return err
	}
	return nil
}

func (r *orderRepository) Close() {
	r.store.Close()
}
