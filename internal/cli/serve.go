package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plateworks/tavola/internal/server"
	"github.com/plateworks/tavola/pkg/cache"
)

// serveCommand creates the serve command for the plate generation API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the plate generation HTTP server",
		Long: `Run the plate generation HTTP server.

The server accepts multipart image uploads and returns rendered plates,
using the same pipeline as the generate command. With --redis, layouts and
rendered artifacts are cached in Redis instead of the local filesystem.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := serveCache(cmd.Context(), noCache, redisAddr)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}

			srv := server.New(server.Config{
				Addr:   addr,
				Cache:  store,
				Logger: c.Logger,
			})

			printInfo("Listening on %s", addr)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for shared caching (host:port)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// serveCache picks the cache backend for server use.
func serveCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr)
	}
	return newCache(false)
}
