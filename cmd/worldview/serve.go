package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohannair2022/unscene-uofthacks13/internal/config"
	"github.com/rohannair2022/unscene-uofthacks13/internal/server"
	"github.com/rohannair2022/unscene-uofthacks13/observe"
	"github.com/rohannair2022/unscene-uofthacks13/secret"
)

func serveCmd() *cobra.Command {
	var cfgPath, addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx, cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Address = addr
			}
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default worldview.yaml in . or ./config)")
	cmd.Flags().StringVar(&addr, "addr", ":3001", "listen address")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	app, err := server.NewApp(ctx, cfg, version, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Close(context.WithoutCancel(ctx))
	}()

	app.Logger.Info(ctx, "starting worldview",
		observe.Field{Key: "version", Value: version},
		observe.Field{Key: "addr", Value: cfg.Server.Address},
		observe.Field{Key: "model", Value: cfg.Upstream.Model},
		observe.Field{Key: "cache_backend", Value: cfg.Cache.Backend},
		observe.Field{Key: "key_prefix", Value: secret.Mask(cfg.Upstream.APIKey)},
		observe.Field{Key: "auth_enabled", Value: cfg.Auth.Enabled},
	)

	return server.Run(ctx, app.Echo, server.Options{
		Addr:              cfg.Server.Address,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, app.Logger)
}
