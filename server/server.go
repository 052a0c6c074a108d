package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/eidos/internal/profile"
	"github.com/hrygo/eidos/plugin/ai"
	apiv1 "github.com/hrygo/eidos/server/router/api/v1"
	"github.com/hrygo/eidos/server/runner/contextsweep"
	"github.com/hrygo/eidos/store"
)

// limiterIdle is how long a user's rate limiter is kept without requests.
const limiterIdle = time.Hour

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer        *echo.Echo
	apiV1Service      *apiv1.APIV1Service
	runnerCancelFuncs []context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	if profile.Secret == "" {
		if !profile.IsDev() {
			return nil, errors.New("EIDOS_SECRET is required in prod mode")
		}
		profile.Secret = "eidos-dev-secret"
		slog.Warn("no secret configured, using the development secret")
	}

	s := &Server{
		Store:   store,
		Profile: profile,
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	s.echoServer = echoServer

	// Healthz endpoint.
	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	s.apiV1Service = apiv1.NewAPIV1Service(profile, store, newLLMService(profile))
	s.apiV1Service.RegisterRoutes(echoServer)

	return s, nil
}

// newLLMService returns nil when the assistant is not configured.
func newLLMService(profile *profile.Profile) ai.LLMService {
	cfg := ai.NewConfigFromProfile(profile)
	if !cfg.Enabled {
		slog.Warn("AI assistant disabled: no LLM API key configured")
		return nil
	}
	if err := cfg.Validate(); err != nil {
		slog.Warn("AI assistant disabled", slog.String("error", err.Error()))
		return nil
	}
	llm, err := ai.NewLLMService(&cfg.LLM)
	if err != nil {
		slog.Warn("AI assistant disabled", slog.String("error", err.Error()))
		return nil
	}
	slog.Info("AI assistant enabled",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", cfg.LLM.Model))
	return llm
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}

	s.StartBackgroundRunners(ctx)

	go func() {
		s.echoServer.Listener = listener
		if err := s.echoServer.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	slog.Info("eidos server started", slog.String("address", address), slog.String("mode", s.Profile.Mode))
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	// Cancel the background runners.
	for _, cancelFunc := range s.runnerCancelFuncs {
		if cancelFunc != nil {
			cancelFunc()
		}
	}

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("eidos stopped properly")
}

// StartBackgroundRunners starts the context sweep and the limiter cleanup.
func (s *Server) StartBackgroundRunners(ctx context.Context) {
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	s.runnerCancelFuncs = append(s.runnerCancelFuncs, sweepCancel)
	sweeper := contextsweep.NewRunner(s.apiV1Service.ContextCache, contextsweep.DefaultInterval)
	go sweeper.Run(sweepCtx)

	limiterCtx, limiterCancel := context.WithCancel(ctx)
	s.runnerCancelFuncs = append(s.runnerCancelFuncs, limiterCancel)
	go func() {
		ticker := time.NewTicker(limiterIdle)
		defer ticker.Stop()
		for {
			select {
			case <-limiterCtx.Done():
				return
			case <-ticker.C:
				if n := s.apiV1Service.Limiter.Cleanup(limiterIdle); n > 0 {
					slog.Debug("rate limiters released", slog.Int("count", n))
				}
			}
		}
	}()
}
