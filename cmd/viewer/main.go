package main

import (
	"fmt"
	"log"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"

	"presence-lab/infrastructure/storage"
	"presence-lab/internal"
)

// The viewer serves the Badger inspector over the delivery journal of a
// running or stopped node, without starting the presence runtime.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// BypassLockGuard allows opening while the node holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	fmt.Printf("Viewer started at http://localhost:%d/inspect?prefix=delivery:\n", config.DebugPort)
	database.StartDebugServer(db, config.DebugPort, "/inspect", storage.DeliveryMapper)
	select {}
}
