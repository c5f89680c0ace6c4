//go:generate go run go.uber.org/mock/mockgen -source=delivery_journal.go -destination=../../mocks/mock_delivery_journal.go -package=mocks
package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/database"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"presence-lab/domain"
	"presence-lab/domain/event"
)

const deliveryPrefix = "delivery:"

type IDeliveryJournal interface {
	Record(d event.Delivery) error
	Latest(limit int) ([]event.Delivery, error)
}

// DeliveryJournal keeps a short-lived trail of routing outcomes.
// Entries expire after ttl and are never replayed.
type DeliveryJournal struct {
	db  *badger.DB
	log *slog.Logger
	ttl time.Duration
}

func NewDeliveryJournal(db *badger.DB, log *slog.Logger, ttl time.Duration) *DeliveryJournal {
	return &DeliveryJournal{db: db, log: log, ttl: ttl}
}

// Record key is delivery:<19 digits unix nanos>:<uuid>, so that keys sort by time.
func (j DeliveryJournal) Record(d event.Delivery) error {
	key := fmt.Sprintf("%s%019d:%s", deliveryPrefix, d.At.UnixNano(), uuid.NewString())

	value, err := toPbDelivery(d)
	if err != nil {
		return err
	}
	data, err := proto.Marshal(value)
	if err != nil {
		return err
	}

	return j.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if j.ttl > 0 {
			entry = entry.WithTTL(j.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Latest returns at most limit deliveries, newest first.
func (j DeliveryJournal) Latest(limit int) ([]event.Delivery, error) {
	var deliveries []event.Delivery
	if limit <= 0 {
		return deliveries, nil
	}
	prefix := []byte(deliveryPrefix)

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		opts.PrefetchSize = limit

		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the greatest key <= seek key
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(deliveries) < limit; it.Next() {
			err := it.Item().Value(func(v []byte) error {
				d, err := decodeDelivery(v)
				if err != nil {
					return err
				}
				deliveries = append(deliveries, d)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during journal fetch: %w", err)
	}
	return deliveries, nil
}

func decodeDelivery(v []byte) (event.Delivery, error) {
	var p structpb.Struct
	if err := proto.Unmarshal(v, &p); err != nil {
		return event.Delivery{}, fmt.Errorf("failed to unmarshal delivery: %w", err)
	}
	return fromPbDelivery(&p)
}

// at is stored as RFC 3339 text with nanoseconds, never as a struct number.
func toPbDelivery(d event.Delivery) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"target":       string(d.Target),
		"event":        string(d.Event),
		"connectionId": string(d.ConnectionID),
		"outcome":      string(d.Outcome),
		"at":           d.At.UTC().Format(time.RFC3339Nano),
	})
}

func fromPbDelivery(p *structpb.Struct) (event.Delivery, error) {
	fields := p.GetFields()
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return event.Delivery{}, fmt.Errorf("invalid delivery time: %w", err)
	}
	return event.Delivery{
		Target:       domain.UserID(fields["target"].GetStringValue()),
		Event:        event.Name(fields["event"].GetStringValue()),
		ConnectionID: domain.ConnectionID(fields["connectionId"].GetStringValue()),
		Outcome:      event.Outcome(fields["outcome"].GetStringValue()),
		At:           at,
	}, nil
}

// DeliveryMapper renders journal entries in the Badger debug inspector.
func DeliveryMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	d, err := decodeDelivery(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = string(d.Outcome)
	row.Detail = fmt.Sprintf("%s -> %s (%s)", d.Event, d.Target, d.ConnectionID)
	return row
}
