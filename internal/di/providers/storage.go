package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/Fachastorm/high-coherence/internal/config"
	"github.com/Fachastorm/high-coherence/internal/logger"
	"github.com/Fachastorm/high-coherence/internal/store"
	"github.com/Fachastorm/high-coherence/internal/store/memory"
	"github.com/Fachastorm/high-coherence/internal/store/sqlite"
)

// StorageHandle bundles the configured token and response stores with
// lifecycle management for the backing driver.
type StorageHandle struct {
	Tokens    store.TokenStore
	Responses store.ResponseStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backing store is reachable.
func (h *StorageHandle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

// Shutdown implements do.Shutdownable.
func (h *StorageHandle) Shutdown() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// ProvideStorage provides the persistence backend selected by configuration.
func ProvideStorage(i do.Injector) (*StorageHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.Storage.Path, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("SQLite store initialized", "path", cfg.Storage.Path)
		return &StorageHandle{
			Tokens:    st,
			Responses: st,
			ping:      st.Ping,
			close:     st.Close,
		}, nil

	case config.DriverMemory:
		log.Info("In-memory store initialized")
		return &StorageHandle{
			Tokens:    memory.NewTokenStore(),
			Responses: memory.NewResponseStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
