package inmemorydb

import (
	"context"
	"sync"

	"github.com/swaplock/swapd/internal/core/domain"
)

type eventRepository struct {
	lock      *sync.RWMutex
	events    map[string][]domain.EscrowEvent
	chUpdates chan *domain.Escrow
	handler   func(escrow *domain.Escrow)
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewEscrowEventRepository(...interface{}) (domain.EscrowEventRepository, error) {
	repo := &eventRepository{
		lock:      &sync.RWMutex{},
		events:    make(map[string][]domain.EscrowEvent),
		chUpdates: make(chan *domain.Escrow),
		done:      make(chan struct{}),
	}
	go repo.listen()
	return repo, nil
}

func (r *eventRepository) Save(
	_ context.Context, id string, events ...domain.EscrowEvent,
) (*domain.Escrow, error) {
	r.lock.Lock()
	allEvents := append(r.events[id], events...)
	r.events[id] = allEvents
	r.lock.Unlock()

	r.wg.Add(1)
	go r.publishEvents(allEvents)
	return domain.NewEscrowFromEvents(allEvents), nil
}

func (r *eventRepository) Load(
	_ context.Context, id string,
) (*domain.Escrow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	events, ok := r.events[id]
	if !ok || len(events) <= 0 {
		return nil, domain.ErrEscrowNotFound
	}
	return domain.NewEscrowFromEvents(events), nil
}

func (r *eventRepository) RegisterEventsHandler(
	handler func(escrow *domain.Escrow),
) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.handler = handler
}

func (r *eventRepository) Close() {
	close(r.done)
	r.wg.Wait()
	close(r.chUpdates)
}

func (r *eventRepository) listen() {
	for {
		select {
		case <-r.done:
			return
		case escrow := <-r.chUpdates:
			r.runHandler(escrow)
		}
	}
}

func (r *eventRepository) publishEvents(events []domain.EscrowEvent) {
	defer r.wg.Done()
	escrow := domain.NewEscrowFromEvents(events)
	select {
	case <-r.done:
		return
	case r.chUpdates <- escrow:
	}
}

func (r *eventRepository) runHandler(escrow *domain.Escrow) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.handler == nil {
		return
	}
	r.handler(escrow)
}
