package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"presence-lab/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	limit := flag.Int("limit", 50, "Number of deliveries to print, newest first")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if err := printDeliveries(os.Stdout, db, *limit); err != nil {
		log.Fatal(err)
	}
}

// printDeliveries renders the latest journal entries as a table, newest first.
func printDeliveries(out io.Writer, db *badger.DB, limit int) error {
	journal := storage.NewDeliveryJournal(db, logs.GetLoggerFromString("INFO"), 0)
	deliveries, err := journal.Latest(limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"At", "Event", "Target", "Connection", "Outcome"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, d := range deliveries {
		// First 8 characters of the connection id are enough to tell sockets apart
		connID := string(d.ConnectionID)
		if len(connID) > 8 {
			connID = connID[:8]
		}
		table.Append([]string{
			d.At.Format("15:04:05.000"),
			string(d.Event),
			string(d.Target),
			connID,
			string(d.Outcome),
		})
	}
	table.Render()
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A node killed mid-write leaves a vlog that needs truncation before a read-only open
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
