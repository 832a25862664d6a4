package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/manimation/manimation/core"
	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/provider"
)

// ModelCatalog lists the configured providers and their models.
type ModelCatalog interface {
	Providers() []string
	Models(ctx context.Context, name string) ([]provider.ModelInfo, error)
}

type Config struct {
	Addr     string
	VideoDir string
	Service  *core.Service
	Catalog  ModelCatalog
	Logger   logger.Logger
}

type Server struct {
	addr     string
	videoDir string
	service  *core.Service
	catalog  ModelCatalog
	logger   logger.Logger
}

func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNullLogger()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		addr:     addr,
		videoDir: cfg.VideoDir,
		service:  cfg.Service,
		catalog:  cfg.Catalog,
		logger:   log,
	}
}

// Router configures and returns the application router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/api/generate", s.generateHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/refine", s.refineHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/render", s.renderHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/evaluate", s.evaluateHandler).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/api/providers", s.providersHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/models", s.modelsHandler).Methods(http.MethodGet)

	r.HandleFunc("/videos/{file}", s.videoHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	return r
}

// Start runs the server until an interrupt or termination signal
// arrives, then drains in-flight requests.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(fmt.Sprintf("Animation server listening on %s", s.addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info(fmt.Sprintf("Received %v, shutting down", sig))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
