package db

import (
	"fmt"

	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/swaplock/swapd/internal/core/ports"
	badgerdb "github.com/swaplock/swapd/internal/infrastructure/db/badger"
	inmemorydb "github.com/swaplock/swapd/internal/infrastructure/db/inmemory"
)

var (
	eventStoreTypes = map[string]func(...interface{}) (domain.EscrowEventRepository, error){
		"badger":   badgerdb.NewEscrowEventRepository,
		"inmemory": inmemorydb.NewEscrowEventRepository,
	}
	escrowStoreTypes = map[string]func(...interface{}) (domain.EscrowRepository, error){
		"badger":   badgerdb.NewEscrowRepository,
		"inmemory": inmemorydb.NewEscrowRepository,
	}
	orderStoreTypes = map[string]func(...interface{}) (domain.OrderRepository, error){
		"badger":   badgerdb.NewOrderRepository,
		"inmemory": inmemorydb.NewOrderRepository,
	}
)

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore  domain.EscrowEventRepository
	escrowStore domain.EscrowRepository
	orderStore  domain.OrderRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid event store type: %s", config.EventStoreType)
	}

	eventStore, err := eventStoreFactory(config.EventStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}

	escrowStoreFactory, ok := escrowStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	orderStoreFactory, ok := orderStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	escrowStore, err := escrowStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create escrow store: %w", err)
	}

	orderStore, err := orderStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create order store: %w", err)
	}

	return &service{
		eventStore:  eventStore,
		escrowStore: escrowStore,
		orderStore:  orderStore,
	}, nil
}

func (s *service) RegisterEventsHandler(handler func(escrow *domain.Escrow)) {
	s.eventStore.RegisterEventsHandler(handler)
}

func (s *service) Events() domain.EscrowEventRepository {
	return s.eventStore
}

func (s *service) Escrows() domain.EscrowRepository {
	return s.escrowStore
}

func (s *service) Orders() domain.OrderRepository {
	return s.orderStore
}

func (s *service) Close() {
	s.eventStore.Close()
	s.escrowStore.Close()
	s.orderStore.Close()
}
