package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wsctl/internal/server"
	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// DevServer serves the in-memory webscraper endpoints until interrupted.
func (r *Runner) DevServer(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.DevServer
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		cfg.Port = port
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d", shared.ErrInvalidFlag, cfg.Port)
	}

	store := server.NewWebscraper()
	if cmd.Bool("seed") {
		store.SeedExample()
		r.logger.Info("seeded example task", "tasks", store.Names())
	}

	router := server.NewDevRouter(server.DevRouterOpts{
		Store:  store,
		Logger: r.logger.With("component", "dev-server"),
		Token:  cmd.String("token"),
	})
	for _, route := range router.Routes() {
		r.logger.Debug("route", "path", route)
	}

	return server.Serve(ctx, server.NewHTTPServer(cfg.Addr(), router), r.logger)
}
