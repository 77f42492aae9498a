package storage

import (
	"fmt"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/config"
)

// NewStore selects a ledger backend from config.
func NewStore(cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "postgres":
		return NewPostgresStorage(cfg.DBDSN, logger)
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}
