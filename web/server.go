package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nomadguide/live"
	"nomadguide/logging"
	"nomadguide/service"
)

type ServiceConfig struct {
	IsDev   bool
	Port    string
	Service *service.Service
	Live    *live.Recomputer
	Logger  *slog.Logger
}

const shutdownTimeout = 10 * time.Second

// NewRouter builds the API engine.
func NewRouter(cfg ServiceConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Live == nil {
		cfg.Live = live.NewRecomputer(cfg.Service, cfg.Service.Queue(), cfg.Logger)
	}

	r := gin.New()
	setupMiddlewares(r, cfg)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handler{svc: cfg.Service}
	lh := newLiveHandler(cfg.Live, cfg.IsDev)

	api := r.Group("/api/v1")
	api.GET("/trips", h.listTrips)
	api.POST("/trips", h.createTrip)

	trip := api.Group("/trips/:id")
	trip.GET("", h.getTrip)
	trip.PUT("", h.updateTrip)
	trip.DELETE("", h.deleteTrip)
	trip.POST("/activate", h.activateTrip)
	trip.GET("/transactions", h.listTransactions)
	trip.POST("/transactions", h.createTransaction)
	trip.GET("/recurring", h.listRecurring)
	trip.POST("/recurring", h.createRecurring)
	trip.GET("/categories", h.listCategories)
	trip.POST("/categories", h.createCategory)
	trip.PUT("/categories/:categoryId", h.updateCategory)
	trip.GET("/summary", h.summary)
	trip.GET("/live", lh.stream)

	reports := trip.Group("/reports")
	reports.GET("/categories", tripReport(h.categoryReport))
	reports.GET("/daily", tripReport(h.dailyReport))
	reports.GET("/weekly", tripReport(h.weeklyReport))
	reports.GET("/monthly", tripReport(h.monthlyReport))
	reports.GET("/currencies", tripReport(h.currencyReport))

	api.PUT("/transactions/:id", h.updateTransaction)
	api.DELETE("/transactions/:id", h.deleteTransaction)
	api.PUT("/recurring/:id", h.updateRecurring)
	api.DELETE("/recurring/:id", h.deleteRecurring)
	api.DELETE("/categories/:id", h.deleteCategory)

	api.GET("/users/:userId/overview", h.overview)
	api.GET("/rates", h.rates)
	api.GET("/rates/quote", h.quote)

	return r
}

// Serve runs the API until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, cfg ServiceConfig) error {
	if cfg.IsDev {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logging.For(cfg.Logger, logging.ComponentHTTP)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
