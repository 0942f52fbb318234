// Package httpapi serves the Telegram webhook, the read-only catalog REST API
// and the health and metrics endpoints on one chi router.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/metrics"
	"github.com/m3rciful/storebot/internal/domain"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// UpdateProcessor runs one Telegram update and reports the handler error.
type UpdateProcessor interface {
	Process(ctx context.Context, upd tele.Update) error
}

// Catalog is the read side of the shop used by the REST endpoints.
type Catalog interface {
	Ping(ctx context.Context) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

// Options configures New.
type Options struct {
	Addr string

	// WebhookPath mounts the webhook endpoint when Processor is set.
	WebhookPath string
	SecretToken string
	Processor   UpdateProcessor

	Catalog  Catalog
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTP
}

// Server owns the HTTP listener.
type Server struct {
	srv     *http.Server
	handler http.Handler
	done    chan error
}

// New builds the router. Start must be called to listen.
func New(opts Options) *Server {
	h := NewRouter(opts)
	return &Server{
		handler: h,
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           h,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
}

// NewRouter wires middlewares and routes.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		Recoverer,
		RequestID,
		Logging(opts.Metrics),
	)

	r.Get("/healthz", Health(opts.Catalog))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.Processor != nil {
		path := opts.WebhookPath
		if path == "" {
			path = "/webhook"
		}
		r.Post(path, Webhook(opts.Processor, opts.SecretToken))
	}
	if opts.Catalog != nil {
		r.Route("/api", func(r chi.Router) {
			r.Get("/categories", ListCategories(opts.Catalog))
			r.Get("/categories/{categoryId}/products", ListProducts(opts.Catalog))
			r.Get("/products", SearchProducts(opts.Catalog))
			r.Get("/products/{productId}", GetProduct(opts.Catalog))
		})
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds the listener and serves in the background. Bind errors are returned directly.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("http: listen %s: %w", s.srv.Addr, err)
	}
	s.done = make(chan error, 1)
	logger.Info(ctx, logger.CompHTTP, "listen", slog.String("addr", ln.Addr().String()))
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			logger.Error(ctx, logger.CompHTTP, "serve", slog.Any("err", err))
		}
		s.done <- err
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.done == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http: shutdown: %w", err)
	}
	err := <-s.done
	logger.Info(ctx, logger.CompHTTP, "stopped")
	return err
}
