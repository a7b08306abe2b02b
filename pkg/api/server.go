package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	MaxBatch       int
	CORSOrigin     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   30 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
		MaxBatch:       DefaultMaxBatch,
		CORSOrigin:     "",
	}
}

// NewRouter registers every route on a mux router behind the middleware.
func NewRouter(cfg ServerConfig, handlers *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware(cfg))

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/route", handlers.HandleRoute).Methods(http.MethodPost)
	v1.HandleFunc("/routes", handlers.HandleRoutes).Methods(http.MethodPost)
	v1.HandleFunc("/health", handlers.HandleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/stats", handlers.HandleStats).Methods(http.MethodGet)
	v1.HandleFunc("/algorithms", handlers.HandleAlgorithms).Methods(http.MethodGet)
	return r
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, handlers),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// middleware adds security headers, CORS, concurrency limiting, panic
// recovery, a request timeout and an access log line.
func middleware(cfg ServerConfig) mux.MiddlewareFunc {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU() * 2
	}
	sem := make(chan struct{}, maxConcurrent)
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Cache-Control", "no-store")

			if cfg.CORSOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
			}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			default:
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(logrus.Fields{
						"panic": rec,
						"path":  r.URL.Path,
					}).Error("handler panicked")
					writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
				}
			}()

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))
			log.WithFields(logrus.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"elapsed": time.Since(start).Round(time.Microsecond),
			}).Info("request")
		})
	}
}
