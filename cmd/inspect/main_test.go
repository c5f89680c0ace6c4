package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"presence-lab/domain/event"
	"presence-lab/infrastructure/storage"
)

func TestPrintDeliveries(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	req.NoError(err)
	defer db.Close()

	// Given one recorded delivery
	journal := storage.NewDeliveryJournal(db, logs.GetLoggerFromString("INFO"), time.Hour)
	req.NoError(journal.Record(event.Delivery{
		Target:       "u2",
		Event:        event.PostLiked,
		ConnectionID: "0123456789abcdef",
		Outcome:      event.Delivered,
		At:           time.Now(),
	}))

	// When the journal is printed
	var out bytes.Buffer
	req.NoError(printDeliveries(&out, db, 10))

	// Then the row shows the event with a shortened connection id
	req.Contains(out.String(), "postLiked")
	req.Contains(out.String(), "01234567")
	req.NotContains(out.String(), "0123456789abcdef")
	req.Contains(out.String(), "delivered")
}
