package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leveler/pkg/api"
	"github.com/matzehuels/leveler/pkg/cache"
	"github.com/matzehuels/leveler/pkg/config"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling API over HTTP",
		Long: `Serve the scheduling API over HTTP.

Settings are read from ~/.config/leveler/config.toml (or --config) and
LEVELER_* environment variables, which take precedence:

  LEVELER_HTTP_ADDR        listen address (default :8080)
  LEVELER_LOG_LEVEL        debug, info, warn, error
  LEVELER_CACHE_BACKEND    file, redis or none
  LEVELER_CACHE_TTL        lifetime of cached schedules, e.g. 24h
  LEVELER_REDIS_ADDR       Redis address for the redis backend
  LEVELER_MONGO_URI        store projects in MongoDB instead of memory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/leveler/config.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	c.SetLogLevel(cfg.Level())

	cc, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.TTL = cfg.CacheTTL
	defer runner.Close()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	c.Logger.Info("starting API server",
		"addr", cfg.HTTPAddr,
		"cache", cfg.CacheBackend,
		"store", storeKind(cfg))

	srv := api.New(api.Options{
		Runner:         runner,
		Store:          st,
		Logger:         c.Logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	return srv.ListenAndServe(ctx, cfg.HTTPAddr)
}

// openCache builds the cache backend named by cfg.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		dir := cfg.CacheDir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// openStore connects to MongoDB when configured and falls back to memory.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	if err != nil {
		return nil, fmt.Errorf("open project store: %w", err)
	}
	return ms, nil
}

func storeKind(cfg config.Config) string {
	if cfg.MongoURI == "" {
		return "memory"
	}
	return "mongo"
}
