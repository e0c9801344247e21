package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/config"
	"github.com/abhisek/neuroscreen/internal/session"
	"github.com/abhisek/neuroscreen/internal/store"
	"github.com/abhisek/neuroscreen/internal/store/redisstore"
)

// backend is the session store selected by configuration together with
// what it can additionally provide.
type backend struct {
	sessions session.Store

	// events is nil unless the backend is SQLite.
	events store.EventRepo

	health func(ctx context.Context) error
	close  func() error
}

// persistent reports whether sessions outlive the process.
func (b *backend) persistent() bool {
	_, mem := b.sessions.(*session.MemoryStore)
	return !mem
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info("using sqlite session store", zap.String("path", dbPath))
		return &backend{
			sessions: st.Sessions(nil),
			events:   st.EventRepo(),
			health:   st.DB().PingContext,
			close:    st.Close,
		}, nil

	case config.StoreRedis:
		opts := redisstore.Options{}
		if cfg.SessionTTL > 0 {
			// Backstop for keys the sweeper never reaches, e.g. after a crash.
			opts.Retention = 2 * cfg.SessionTTL
		}
		rs, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return &backend{
			sessions: rs,
			health:   rs.Ping,
			close:    rs.Close,
		}, nil

	default:
		logger.Info("using in-memory session store")
		return &backend{
			sessions: session.NewMemoryStore(nil),
			close:    func() error { return nil },
		}, nil
	}
}
