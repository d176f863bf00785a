package merchant

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alovak/brcode-playground/internal/datefmt"
	"github.com/alovak/brcode-playground/internal/events"
	"github.com/alovak/brcode-playground/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// App is the main application, it contains all the components of the merchant service
// and is responsible for starting and stopping them.
type App struct {
	srv       *http.Server
	wg        *sync.WaitGroup
	Addr      string
	logger    *slog.Logger
	config    *Config
	storage   Storage
	publisher *events.Publisher
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "merchant"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:     &sync.WaitGroup{},
		logger: logger,
		config: config,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	if err := datefmt.LoadDefaultLocation(a.config.Timezone); err != nil {
		a.logger.Info("invalid timezone; using default UTC", slog.String("tz", a.config.Timezone), slog.Any("err", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	storage, err := OpenStorage(ctx, a.config.Storage)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", a.config.Storage.Backend, err)
	}
	a.storage = storage

	svc := NewService(storage, a.config)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.NewStructuredLogger(a.logger))

	if a.config.Kafka.Enabled {
		publisher, err := events.NewPublisher(events.Config{
			Brokers: a.config.Kafka.Brokers,
			Topic:   a.config.Kafka.Topic,
		}, "brcode")
		if err != nil {
			a.closeBackends()
			return fmt.Errorf("creating kafka publisher: %w", err)
		}
		a.publisher = publisher
		svc.WithPublisher(publisher, a.logger)
		router.Handle("/metrics", publisher.MetricsHandler())
	}

	api := NewAPI(svc)
	api.AppendRoutes(router)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := storage.Ping(ctx); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		a.closeBackends()
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Error("shutting down http server", "err", err)
		}
	}

	a.wg.Wait()
	a.closeBackends()

	a.logger.Info("app stopped")
}

func (a *App) closeBackends() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Error("closing storage", "err", err)
		}
	}
}
