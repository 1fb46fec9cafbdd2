// Package server exposes the insight service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rohannair2022/unscene-uofthacks13/auth"
	"github.com/rohannair2022/unscene-uofthacks13/health"
	"github.com/rohannair2022/unscene-uofthacks13/insight"
	"github.com/rohannair2022/unscene-uofthacks13/observe"
	"github.com/rohannair2022/unscene-uofthacks13/orchestrator"
)

// OutcomeHeader reports whether a response was a cache hit, freshly
// generated, or degraded.
const OutcomeHeader = "X-Insight-Outcome"

// Resolver answers insight queries. *orchestrator.Orchestrator implements it.
type Resolver interface {
	Resolve(ctx context.Context, q insight.Query) orchestrator.Result
}

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Resolver Resolver
	Health   *health.Aggregator
	Summary  health.SummaryFunc

	// Auth gates the insight routes when non-nil.
	Auth auth.Authenticator

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	Logger      observe.Logger
	CORSOrigins []string
}

type errorBody struct {
	Error string `json:"error"`
}

// New builds the echo application.
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = observe.NopLogger()
	}
	if d.Health == nil {
		d.Health = health.NewAggregator()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLog(d.Logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, auth.DefaultAPIKeyHeader},
		ExposeHeaders: []string{OutcomeHeader, echo.HeaderXRequestID},
	}))

	h := &handler{resolver: d.Resolver, logger: d.Logger}
	var gate []echo.MiddlewareFunc
	if d.Auth != nil {
		gate = append(gate, auth.Middleware(d.Auth))
	}
	e.GET("/insight", h.insight, gate...)
	e.GET("/api/research", h.research, gate...)

	e.GET("/health", echo.WrapHandler(health.SummaryHandler(d.Health, d.Summary)))
	e.GET("/healthz", echo.WrapHandler(health.LivenessHandler()))
	e.GET("/readyz", echo.WrapHandler(health.ReadinessHandler(d.Health)))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
	return e
}

type handler struct {
	resolver Resolver
	logger   observe.Logger
}

// insight serves GET /insight?place=&region=.
func (h *handler) insight(c echo.Context) error {
	return h.serve(c, c.QueryParam("place"), c.QueryParam("region"), "place required")
}

// research serves the legacy GET /api/research?state=&country= route.
func (h *handler) research(c echo.Context) error {
	return h.serve(c, c.QueryParam("state"), c.QueryParam("country"), "state required")
}

func (h *handler) serve(c echo.Context, place, region, missing string) error {
	if strings.TrimSpace(place) == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: missing})
	}
	ctx := c.Request().Context()
	res := h.resolver.Resolve(ctx, insight.Query{Place: place, Region: region})

	c.Response().Header().Set(OutcomeHeader, res.Outcome.String())
	if res.Outcome == orchestrator.OutcomeDegraded {
		h.logger.Warn(ctx, "serving degraded insight",
			observe.Field{Key: "key", Value: res.Key},
			observe.Field{Key: "request_id", Value: c.Response().Header().Get(echo.HeaderXRequestID)},
			observe.Err(res.Err),
		)
	}
	return c.JSON(http.StatusOK, res.Insight)
}

func requestLog(logger observe.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []observe.Field{
				{Key: "method", Value: v.Method},
				{Key: "path", Value: v.URIPath},
				{Key: "status", Value: v.Status},
				{Key: "duration_ms", Value: v.Latency.Milliseconds()},
				{Key: "request_id", Value: v.RequestID},
			}
			if v.Error != nil {
				fields = append(fields, observe.Err(v.Error))
			}
			logger.Info(c.Request().Context(), "request", fields...)
			return nil
		},
	})
}

func errorHandler(logger observe.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		if code >= http.StatusInternalServerError {
			req := c.Request()
			logger.Error(req.Context(), "request failed",
				observe.Field{Key: "method", Value: req.Method},
				observe.Field{Key: "path", Value: req.URL.Path},
				observe.Err(err),
			)
		}
		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorBody{Error: msg})
	}
}

// Options configures Run.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Run serves h on opts.Addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, h http.Handler, opts Options, logger observe.Logger) error {
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 5 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: opts.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.ShutdownTimeout)
	defer cancel()
	logger.Info(shutdownCtx, "shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
