package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/turning/pkg/adapters/file"
	"github.com/aretw0/turning/pkg/adapters/memory"
	"github.com/aretw0/turning/pkg/adapters/redis"
	"github.com/aretw0/turning/pkg/adapters/sqlite"
	"github.com/aretw0/turning/pkg/persistence/middleware"
	"github.com/aretw0/turning/pkg/ports"
)

// DefaultSQLitePath is used by the sqlite store when no path is configured.
var DefaultSQLitePath = filepath.Join(".turning", "reports.db")

// Backends are the report store and locker selected by Config.
type Backends struct {
	Store  ports.ReportStore
	Locker ports.Locker
	// Failing lists the suites whose last run failed, when the store can answer it.
	Failing func(ctx context.Context) ([]string, error)
	closers []func() error
}

// OpenBackends connects the configured store.
// Redis backs both the store and the locker; every other store locks in memory.
func OpenBackends(cfg Config) (*Backends, error) {
	b := &Backends{Locker: memory.NewLocker()}
	var store ports.ReportStore

	switch cfg.Store {
	case StoreFile, "":
		store = file.New(cfg.StorePath)
	case StoreMemory:
		store = memory.NewStore()
	case StoreSQLite:
		path := cfg.StorePath
		if path == "" {
			path = DefaultSQLitePath
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		store = s
		b.closers = append(b.closers, s.Close)
		b.Failing = s.Failing
	case StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		store = redis.NewFromClient(client)
		b.Locker = redis.NewLocker(client, redis.DefaultPrefix)
		b.closers = append(b.closers, client.Close)
	default:
		return nil, fmt.Errorf("unknown store %q (want file, memory, redis or sqlite)", cfg.Store)
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactionMiddleware(cfg.Redact))
	}
	if cfg.EncryptionKey != "" {
		key, err := cfg.encryptionKey()
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.Store = middleware.Chain(store, mws...)
	return b, nil
}

// Close releases the connections held by the backends.
func (b *Backends) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
