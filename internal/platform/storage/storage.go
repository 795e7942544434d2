// Package storage picks the report repository named by the configuration.
package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/rgdevment/billboard-registry/internal/config"
	"github.com/rgdevment/billboard-registry/internal/platform/storage/scylla"
	"github.com/rgdevment/billboard-registry/internal/platform/storage/sqlite"
	"github.com/rgdevment/billboard-registry/internal/service"
)

// Open connects the configured driver and applies its schema. The returned
// close func must be called on shutdown.
func Open(ctx context.Context, cfg *config.Config) (service.Repository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✅ Using SQLite store at %s", cfg.SQLitePath)
		return store, func() { store.Close() }, nil

	case config.DriverScylla:
		if err := scylla.EnsureKeyspace(cfg.ScyllaKeyspace, cfg.ScyllaHosts...); err != nil {
			return nil, nil, err
		}
		session, err := scylla.Connect(cfg.ScyllaKeyspace, cfg.ScyllaHosts...)
		if err != nil {
			return nil, nil, err
		}
		if err := scylla.Migrate(ctx, session); err != nil {
			session.Close()
			return nil, nil, err
		}
		return scylla.NewScyllaRepository(session), session.Close, nil
	}

	return nil, nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
}
