package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/rohannair2022/unscene-uofthacks13/auth"
	"github.com/rohannair2022/unscene-uofthacks13/cache"
	"github.com/rohannair2022/unscene-uofthacks13/health"
	"github.com/rohannair2022/unscene-uofthacks13/internal/config"
	"github.com/rohannair2022/unscene-uofthacks13/observe"
	"github.com/rohannair2022/unscene-uofthacks13/orchestrator"
	"github.com/rohannair2022/unscene-uofthacks13/resilience"
	"github.com/rohannair2022/unscene-uofthacks13/upstream"
)

// App is the assembled service.
type App struct {
	Echo         *echo.Echo
	Observer     observe.Observer
	Logger       observe.Logger
	Cache        cache.Cache
	Orchestrator *orchestrator.Orchestrator
	Guard        *resilience.Guard
	Health       *health.Aggregator
}

// NewApp wires every component from cfg. Log lines go to logOut, or stderr
// when nil.
func NewApp(ctx context.Context, cfg *config.Config, version string, logOut io.Writer) (*App, error) {
	obsCfg := cfg.Observe.Observe(version)
	obsCfg.Logging.Writer = logOut
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, err
	}
	app := &App{Observer: obs, Logger: obs.Logger()}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, app.fail(ctx, err)
	}

	app.Cache, err = cache.New(ctx, cfg.Cache.Policy())
	if err != nil {
		return nil, app.fail(ctx, fmt.Errorf("cache: %w", err))
	}
	if err := observe.RegisterCacheGauge(obs.Meter(), app.Cache.Len); err != nil {
		return nil, app.fail(ctx, err)
	}

	client, err := upstream.New(cfg.Upstream.Client(), upstream.WithTracer(obs.Tracer()))
	if err != nil {
		return nil, app.fail(ctx, err)
	}

	guardCfg := cfg.Resilience.Guard()
	guardCfg.Circuit.OnStateChange = func(from, to resilience.State) {
		app.Logger.Warn(context.Background(), "upstream circuit state changed",
			observe.Field{Key: "from", Value: from.String()},
			observe.Field{Key: "to", Value: to.String()},
		)
	}
	app.Guard = resilience.NewGuard(guardCfg)

	app.Orchestrator, err = orchestrator.New(app.Cache, client,
		orchestrator.WithGuard(app.Guard),
		orchestrator.WithObserver(mw),
	)
	if err != nil {
		return nil, app.fail(ctx, err)
	}

	configured := cfg.Upstream.APIKey != ""
	app.Health = health.NewAggregator()
	app.Health.Register("cache", health.NewCacheChecker(app.Cache, 0))
	app.Health.Register("credential", health.NewCredentialChecker(configured))
	app.Health.Register("upstream", health.NewCircuitChecker(app.Guard.Circuit()))
	if cfg.Server.MaxHeapBytes > 0 {
		app.Health.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{MaxHeapBytes: cfg.Server.MaxHeapBytes}))
	}

	app.Echo = New(Deps{
		Resolver: app.Orchestrator,
		Health:   app.Health,
		Summary: func(ctx context.Context) health.Summary {
			return health.Summary{CacheSize: app.Cache.Len(ctx), APIKeyConfigured: configured}
		},
		Auth:        authenticator(cfg.Auth),
		Metrics:     obs.MetricsHandler(),
		Logger:      app.Logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	return app, nil
}

// authenticator returns nil when auth is disabled.
func authenticator(cfg config.AuthConfig) auth.Authenticator {
	if !cfg.Enabled {
		return nil
	}
	var auths []auth.Authenticator
	if len(cfg.APIKeys) > 0 {
		auths = append(auths, auth.NewAPIKeyAuthenticator(cfg.Header, auth.NewMemoryAPIKeyStore(cfg.APIKeys...)))
	}
	if cfg.JWT.Secret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret:   []byte(cfg.JWT.Secret),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		}))
	}
	return auth.NewCompositeAuthenticator(auths...)
}

// Close flushes telemetry and releases the cache backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if c, ok := a.Cache.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.Observer != nil {
		errs = append(errs, a.Observer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (a *App) fail(ctx context.Context, err error) error {
	return errors.Join(err, a.Close(ctx))
}
