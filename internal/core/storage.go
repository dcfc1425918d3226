package core

import (
	"fmt"
	"os"

	"seathub/internal/infra/persistence/memory"
	"seathub/internal/infra/persistence/postgres"
	"seathub/internal/infra/persistence/sqlite"
	"seathub/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	SEATHUB_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	SEATHUB_SQLITE_PATH: path to sqlite file (default ./seathub.db)
//	SEATHUB_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore() (domain.PersistentStore, error) {
	driver := os.Getenv("SEATHUB_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("SEATHUB_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("SEATHUB_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
