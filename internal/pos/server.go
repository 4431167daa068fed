package pos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"

	"tablepay/internal/config"
	"tablepay/internal/feed"
	"tablepay/internal/lifecycle"
	"tablepay/internal/logger"
	"tablepay/internal/store"
)

const (
	readHeaderTimeout = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type Server struct {
	ctx    context.Context
	cfg    *config.Config
	port   int
	log    logger.Logger
	router *mux.Router
	srv    *http.Server
	db     *store.Postgres
	fd     *feed.RabbitMQ
}

func NewServer(ctx context.Context, cfg *config.Config, port int, log logger.Logger) *Server {
	return &Server{
		ctx:    ctx,
		cfg:    cfg,
		port:   port,
		log:    log,
		router: mux.NewRouter(),
	}
}

// Run connects the backing services, wires routes and listens. It
// returns when the server stops.
func (s *Server) Run() error {
	log := s.log.Action("server_starting")

	db, err := store.Connect(s.ctx, s.cfg.DB, s.log)
	if err != nil {
		log.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	s.db = db
	log.Action("db_connected").Info("Successful database connection")

	fd, err := feed.ConnectRabbitMQ(s.cfg.RMQ, s.log)
	if err != nil {
		log.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}
	s.fd = fd
	log.Action("mb_connected").Info("Successful message broker connection")

	s.configure()

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Action("server_started").Info("pos service is running", "port", s.port)
	return s.listen()
}

// Stop shuts everything down, collecting every close failure.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Action("graceful_shutdown_started").Info("Shutting down pos service")

	var result *multierror.Error

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Action("graceful_shutdown_failed").Error("Failed to shut down HTTP server gracefully", err)
			result = multierror.Append(result, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if s.fd != nil {
		if err := s.fd.Close(); err != nil {
			s.log.Action("mb_close_failed").Error("Failed to close message broker", err)
			result = multierror.Append(result, err)
		} else {
			s.log.Action("mb_closed").Info("Message broker closed")
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Action("db_close_failed").Error("Failed to close database", err)
			result = multierror.Append(result, err)
		} else {
			s.log.Action("db_closed").Info("Database closed")
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	s.log.Action("graceful_shutdown_completed").Info("pos service shut down gracefully")
	return nil
}

func (s *Server) listen() error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) configure() {
	engine := lifecycle.NewEngine(s.db, s.fd, s.log)
	h := NewOrderHandler(engine, s.log)

	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := s.db.IsAlive(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"alive": false}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(SessionMiddleware(s.log))

	RegisterRoutes(api, h)
}

// RegisterRoutes mounts the order API on the given (already
// session-guarded) router. Split out so tests can mount it on a bare
// router with in-memory backends.
func RegisterRoutes(api *mux.Router, h *OrderHandler) {
	api.HandleFunc("/orders", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/orders/active", h.ListActive).Methods(http.MethodGet)
	api.HandleFunc("/orders/ready", h.ListReady).Methods(http.MethodGet)
	api.HandleFunc("/orders/today", h.ListToday).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/transition", h.Transition).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/log", h.StatusLog).Methods(http.MethodGet)
	api.HandleFunc("/reports/sales", h.SalesReport).Methods(http.MethodGet)
}
