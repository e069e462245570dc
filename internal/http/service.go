package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/config"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/apierr"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/dto"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/metric"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/middleware"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/swagger"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/service"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	authCfg  config.Auth
	invCfg   config.Inventory
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics

	healthChecker db.HealthChecker
	productSvc    service.ProductService
	stockSvc      service.StockService
	reportSvc     service.ReportService
	categorySvc   service.CategoryService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	authCfg config.Auth,
	invCfg config.Inventory,
	log *slog.Logger,
	healthChecker db.HealthChecker,
	productSvc service.ProductService,
	stockSvc service.StockService,
	reportSvc service.ReportService,
	categorySvc service.CategoryService,
) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:           cfg,
		authCfg:       authCfg,
		invCfg:        invCfg,
		logger:        log.With(slog.String("service", "http")),
		registry:      registry,
		metrics:       metric.New(registry),
		healthChecker: healthChecker,
		productSvc:    productSvc,
		stockSvc:      stockSvc,
		reportSvc:     reportSvc,
		categorySvc:   categorySvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", srv.Addr))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.productSvc)
	stock := newStockHandler(s.stockSvc)
	reports := newReportHandler(s.reportSvc, s.invCfg.CurrencySymbol)
	categories := newCategoryHandler(s.categorySvc)

	r.Get("/healthz", s.handle(s.health))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Operator(s.logger, s.authCfg.JWTSecret))

		r.Get("/products", s.handle(products.ListProducts))
		r.Post("/products", s.handle(products.RegisterProduct))
		r.Get("/products/{id}", s.handle(products.GetProduct))
		r.Patch("/products/{id}", s.handle(products.UpdateProduct))
		r.Delete("/products/{id}", s.handle(products.DeleteProduct))
		r.Post("/products/{id}/stock-changes", s.handle(stock.ApplyStockChange))

		r.Post("/stock-in", s.handle(stock.StockIn))
		r.Get("/stock-transactions", s.handle(stock.ListTransactions))

		r.Get("/categories", s.handle(categories.ListCategories))

		r.Get("/dashboard", s.handle(reports.Dashboard))
		r.Get("/exports/inventory", s.handle(reports.ExportInventory))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.handleResponseError(w, r, apperr.RouteNotFoundErr)
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle turns a returned error into the JSON error response.
func (s *Service) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var reqErr requestError
		if errors.As(err, &reqErr) {
			s.handleRequestError(w, r, reqErr)
			return
		}

		s.handleResponseError(w, r, err)
	}
}

func (s *Service) health(w http.ResponseWriter, r *http.Request) error {
	if ok, err := s.healthChecker.IsHealthy(r.Context()); !ok {
		s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		return writeJSON(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
	}

	return writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	s.logger.WarnContext(r.Context(), "http request error", slog.Any("error", err))

	res := apierr.New(apperr.ValidationErr.WithMsg("%s", err.Error()).WrapParent(err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding error request",
			slog.Any("error", err))
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
