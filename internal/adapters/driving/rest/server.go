package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/critic/internal/core/ports/driving"
	"github.com/custodia-labs/critic/internal/logger"
)

// ErrMissingPredictionService is returned when the prediction service is not provided.
var ErrMissingPredictionService = errors.New("rest: prediction service is required")

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 15 * time.Second

// Ports aggregates the driving ports the API calls.
type Ports struct {
	Prediction driving.PredictionService
	Runs       driving.RunService
	Artifacts  driving.ArtifactService
}

// Limits configures request throttling.
type Limits struct {
	// Rate is the sustained predictions per second. Zero disables throttling.
	Rate float64

	// Burst is the token bucket size.
	Burst int
}

// Server is the REST API server.
type Server struct {
	ports   Ports
	echo    *echo.Echo
	limiter *rate.Limiter
}

// NewServer builds the echo instance and registers routes.
func NewServer(ports Ports, limits Limits) (*Server, error) {
	if ports.Prediction == nil {
		return nil, ErrMissingPredictionService
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(err, c)
		logger.Debug("rest: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	e.Use(middleware.Recover())

	// logging for server-side latency.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Debug("rest: %s %s %d (%s)", c.Request().Method, c.Request().URL.Path,
				c.Response().Status, time.Since(start).Round(time.Microsecond))
			return err
		}
	})

	s := &Server{ports: ports, echo: e}
	if limits.Rate > 0 {
		burst := limits.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(limits.Rate), burst)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	v1.POST("/predict", s.handlePredict, s.throttle)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:runId", s.handleGetRun)
	v1.GET("/artifacts", s.handleListArtifacts)

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve accepts connections on l until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.echo.Listener = l

	go func() {
		<-ctx.Done()
		graceful, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(graceful); err != nil {
			logger.Warn("rest: shutdown: %v", err)
		}
	}()

	err := s.echo.Start("")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// throttle rejects requests once the token bucket is empty.
func (s *Server) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(c)
	}
}

// Listen opens a TCP listener on port, trying the following ports up to
// span more times when it is taken. Port 0 picks any free port.
func Listen(host string, port, span int) (net.Listener, error) {
	if port == 0 {
		span = 0
	}
	var lastErr error
	for p := port; p <= port+span; p++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(p)))
		if err == nil {
			return l, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no available port in range %d-%d: %w", port, port+span, lastErr)
}
