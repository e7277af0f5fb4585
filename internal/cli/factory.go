package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/config"
	"github.com/aretw0/rewind/pkg/adapters/file"
	"github.com/aretw0/rewind/pkg/adapters/memory"
	"github.com/aretw0/rewind/pkg/adapters/redis"
	"github.com/aretw0/rewind/pkg/observability"
	"github.com/aretw0/rewind/pkg/persistence/middleware"
	"github.com/aretw0/rewind/pkg/ports"
	"github.com/aretw0/rewind/pkg/schema"
	"github.com/aretw0/rewind/pkg/session"
)

// Stack is everything a command needs to serve sessions.
type Stack struct {
	Service *rewind.Service
	Store   ports.SessionStore
	Metrics *observability.Metrics
	Logger  *slog.Logger

	closers []func() error
}

// Close releases backend connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// ResolveStorePath anchors a relative file store path in dir.
func ResolveStorePath(cfg *config.Config, dir string) {
	if dir == "" || filepath.IsAbs(cfg.Store.Path) {
		return
	}
	cfg.Store.Path = filepath.Join(dir, cfg.Store.Path)
}

// Build wires store, middleware, locks, engine and service from cfg.
// Metrics are created on reg when enabled; a nil reg uses a fresh registry.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Stack, error) {
	stack := &Stack{Logger: logger}

	store, locker, err := stack.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.Encryption.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Encryption.Redact))
	}
	active, fallback, err := cfg.Encryption.Keys()
	if err != nil {
		_ = stack.Close()
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
		logger.Info("Encryption at rest enabled", "fallback_keys", len(fallback))
	}
	stack.Store = middleware.Chain(store, mws...)

	if cfg.Metrics.Enabled {
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		stack.Metrics = observability.NewMetrics(reg)
	}

	fields, err := schema.Parse(cfg.History.FieldTypes)
	if err != nil {
		_ = stack.Close()
		return nil, err
	}

	eng, err := rewind.New(
		rewind.WithLogger(logger),
		rewind.WithSlices(cfg.History.Slices...),
		rewind.WithMaxEntries(cfg.History.MaxEntries),
		rewind.WithFieldSchema(fields),
		rewind.WithLifecycleHooks(observability.Hooks(logger, stack.Metrics)),
	)
	if err != nil {
		_ = stack.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	managerOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Store.Redis.LockTTL),
	}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}

	stack.Service = rewind.NewService(eng, session.NewManager(stack.Store, managerOpts...), rewind.WithServiceLogger(logger))
	return stack, nil
}

func (s *Stack) openStore(ctx context.Context, cfg config.Config) (ports.SessionStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		s.Logger.Debug("Using file store", "path", cfg.Store.Path)
		return file.New(cfg.Store.Path), nil, nil

	case config.BackendRedis:
		rc := cfg.Store.Redis
		client := goredis.NewClient(&goredis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		s.closers = append(s.closers, client.Close)

		var opts []redis.Option
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix))
		}
		if rc.TTL > 0 {
			opts = append(opts, redis.WithTTL(rc.TTL))
		}
		s.Logger.Debug("Using redis store", "addr", rc.Addr)
		return redis.NewFromClient(client, opts...), redis.NewLocker(client, redis.DefaultLockPrefix), nil

	default:
		return memory.NewStore(), nil, nil
	}
}
