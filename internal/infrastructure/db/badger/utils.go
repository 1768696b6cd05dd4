package badgerdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
					logger.Errorf("%s", err)
				}
			}
		}()
	}

	return db, nil
}

func serializeEvents(events []domain.EscrowEvent) (*eventsDTO, error) {
	rawEvents := make([][]byte, 0, len(events))
	for _, event := range events {
		buf, err := serializeEvent(event)
		if err != nil {
			return nil, err
		}
		rawEvents = append(rawEvents, buf)
	}
	return &eventsDTO{rawEvents}, nil
}

func deserializeEvents(rawEvents [][]byte) ([]domain.EscrowEvent, error) {
	events := make([]domain.EscrowEvent, 0)
	for _, buf := range rawEvents {
		event, err := deserializeEvent(buf)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func serializeEvent(event domain.EscrowEvent) ([]byte, error) {
	switch eventType := event.(type) {
	default:
		return json.Marshal(eventType)
	}
}

func deserializeEvent(buf []byte) (domain.EscrowEvent, error) {
	{
		var event = domain.EscrowWithdrawn{}
		if err := json.Unmarshal(buf, &event); err == nil && len(event.Secret) > 0 {
			return event, nil
		}
	}
	{
		var event = domain.EscrowRecovered{}
		if err := json.Unmarshal(buf, &event); err == nil && len(event.RecoveredBy) > 0 {
			return event, nil
		}
	}
	{
		var event = domain.EscrowCreated{}
		if err := json.Unmarshal(buf, &event); err == nil && len(event.SecretHash) > 0 {
			return event, nil
		}
	}

	return nil, fmt.Errorf("unknown event")
}
