package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tdesilva/nicscan/internal/common"
	"github.com/tdesilva/nicscan/internal/export"
	"github.com/tdesilva/nicscan/internal/ingest"
	"github.com/tdesilva/nicscan/internal/pipeline"
	"github.com/tdesilva/nicscan/internal/repository"
)

// Server is the HTTP surface: upload-and-scan, stored results, audit export,
// and a health probe for the external OCR binaries.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	cfg        common.ServerConfig
	ocrCfg     common.OCRConfig

	pool      *pgxpool.Pool
	ingestor  *ingest.Service
	processor *pipeline.Processor
	docs      repository.DocumentRepository
	ids       repository.IdentifierRepository
	exporter  *export.Service

	mu      sync.RWMutex
	running bool
}

// Deps carries the collaborators the handlers need.
type Deps struct {
	Pool      *pgxpool.Pool
	Ingestor  *ingest.Service
	Processor *pipeline.Processor
	Docs      repository.DocumentRepository
	IDs       repository.IdentifierRepository
	Exporter  *export.Service
}

// New creates the server with routes registered but not yet listening.
func New(cfg common.ServerConfig, ocrCfg common.OCRConfig, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:    logger,
		cfg:       cfg,
		ocrCfg:    ocrCfg,
		pool:      deps.Pool,
		ingestor:  deps.Ingestor,
		processor: deps.Processor,
		docs:      deps.Docs,
		ids:       deps.IDs,
		exporter:  deps.Exporter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/documents/{id}/identifiers", s.handleIdentifiers)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.Handle("GET /outputs/", http.StripPrefix("/outputs/", http.FileServer(http.Dir(cfg.OutputDir))))

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // uploads are scanned synchronously
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start blocks until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return err
		}
	}
	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning reports whether Start is active.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		r = r.WithContext(common.WithRequestID(r.Context(), reqID))
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
