package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/repairhub/workshop-service/internal/config"
	"github.com/repairhub/workshop-service/internal/database"
	"github.com/repairhub/workshop-service/internal/handler"
	"github.com/repairhub/workshop-service/internal/imagestore"
	"github.com/repairhub/workshop-service/internal/kafka"
	"github.com/repairhub/workshop-service/internal/notify"
	"github.com/repairhub/workshop-service/internal/router"
	"github.com/repairhub/workshop-service/internal/service"
	"go.uber.org/zap"
)

// API is the HTTP application: migrations, DB, services, dispatcher, router.
type API struct {
	cfg      *config.Config
	log      *zap.Logger
	httpSrv  *http.Server
	producer *kafka.Producer
}

func NewAPI(cfg *config.Config, log *zap.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var markers notify.MarkerStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		markers = notify.NewRedisMarkerStore(client)
		log.Info("notification de-dup markers in redis", zap.String("addr", cfg.RedisAddr))
	} else {
		markers = notify.NewMemoryMarkerStore(nil)
		log.Info("notification de-dup markers in process memory")
	}

	var mailer notify.Mailer
	if cfg.MailGatewayURL != "" {
		mailer = notify.NewGatewayMailer(cfg.MailGatewayURL, cfg.MailFrom)
		log.Info("mail gateway configured", zap.String("url", cfg.MailGatewayURL))
	} else {
		mailer = notify.NewLogMailer(log)
	}
	dispatcher := notify.NewDispatcher(markers, mailer, log)

	producer := kafka.NewProducer(kafka.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic, log)

	store := imagestore.New(cfg.MediaRoot)

	workOrderSvc := service.NewWorkOrderService(db, log)
	customerSvc := service.NewCustomerService(db)
	technicianSvc := service.NewTechnicianService(db)
	imageSvc := service.NewImageService(db)
	remoteSvc := service.NewRemoteRequestService(db, log)

	h := router.Handlers{
		Customer:      handler.NewCustomerHandler(customerSvc),
		Technician:    handler.NewTechnicianHandler(technicianSvc),
		WorkOrder:     handler.NewWorkOrderHandler(workOrderSvc, dispatcher, producer),
		Image:         handler.NewImageHandler(imageSvc, store, log),
		RemoteRequest: handler.NewRemoteRequestHandler(remoteSvc),
		Dashboard:     handler.NewDashboardHandler(workOrderSvc),
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(h, cfg.APIWriteToken, cfg.MediaRoot),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		log:      log,
		httpSrv:  httpSrv,
		producer: producer,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("HTTP server listening", zap.String("addr", a.httpSrv.Addr))
	a.log.Info("endpoints",
		zap.String("swagger", base+"/swagger"),
		zap.String("health", base+"/health"),
		zap.String("metrics", base+"/metrics"),
		zap.String("api", base+"/api/v1/"))

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		a.log.Warn("kafka close", zap.Error(err))
	}
	return nil
}
