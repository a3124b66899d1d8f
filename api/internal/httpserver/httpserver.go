package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sheet-reader/api/internal/handle"
	"sheet-reader/api/internal/logging"
)

// NewRouter mounts the service routes. engine and model are only shown in
// the index document.
func NewRouter(h *handle.Handle, engine, model string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(requestID)
	mux.Use(accessLog)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", Healthz)

	index := h.Index(engine, model)
	mux.Get("/", index)
	mux.Get("/api/index", index)

	// method checks live in the handler so every verb gets the JSON envelope
	mux.HandleFunc("/api/analyze-sheet", h.AnalyzeSheet)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not found"}`))
	})
	return mux
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// HealthRouter serves only /healthz, for processes without the HTTP API.
func HealthRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Get("/healthz", Healthz)
	return mux
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Warn("shutdown signal received, closing server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Info("server stopped cleanly")
	return nil
}
