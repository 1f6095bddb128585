package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/itemshuffle/internal/api"
	"github.com/matzehuels/itemshuffle/pkg/cache"
	"github.com/matzehuels/itemshuffle/pkg/pipeline"
)

const (
	defaultAddr     = ":8080"
	readTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr          string
	world         string
	redisAddr     string
	redisPassword string
	redisDB       int
	noCache       bool
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		settings settingsFlags
		opts     = serveOpts{addr: defaultAddr}
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

POST /v1/generate shuffles a world sent in the request body. With --world,
GET /v1/spoiler/{seed} serves spoiler logs for that world.

Results are cached in the local cache directory, or in Redis with --redis so
that several instances share them. Settings flags become the defaults for
every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.load()
			if err != nil {
				return err
			}
			srv := &api.Server{Logger: c.Logger, Defaults: cfg}
			if opts.world != "" {
				_, data, err := readWorld(opts.world)
				if err != nil {
					return err
				}
				srv.World = data
			}
			return c.runServe(cmd.Context(), srv, opts)
		},
	}

	settings.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.world, "world", "", "world file served by the spoiler route")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, srv *api.Server, opts serveOpts) error {
	runner, err := c.serveRunner(ctx, opts)
	if err != nil {
		return err
	}
	defer runner.Close()
	srv.Runner = runner

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readTimeout,
	}

	serveErr := make(chan error, 1)
	c.Logger.Info("listening", "addr", opts.addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		c.Logger.Info("stopped")
		return nil
	case err := <-serveErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// serveRunner builds a runner on Redis when configured, else on the local
// cache. Keys are scoped so that API results never collide with CLI runs.
func (c *CLI) serveRunner(ctx context.Context, opts serveOpts) (*pipeline.Runner, error) {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:")
	if opts.redisAddr == "" {
		store, err := newCache(opts.noCache)
		if err != nil {
			return nil, fmt.Errorf("initialize cache: %w", err)
		}
		return pipeline.NewRunner(store, keyer, c.Logger), nil
	}
	store, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     opts.redisAddr,
		Password: opts.redisPassword,
		DB:       opts.redisDB,
		Prefix:   appName + ":",
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using redis cache", "addr", opts.redisAddr)
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}
