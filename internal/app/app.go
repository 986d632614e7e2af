package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/onboarding/config"
	"github.com/niksmo/onboarding/internal/adapter"
	"github.com/niksmo/onboarding/internal/adapter/httpclient"
	"github.com/niksmo/onboarding/internal/adapter/httphandler"
	"github.com/niksmo/onboarding/internal/adapter/kafka"
	"github.com/niksmo/onboarding/internal/adapter/metrics"
	"github.com/niksmo/onboarding/internal/adapter/storage"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/niksmo/onboarding/internal/core/service"
	"github.com/niksmo/onboarding/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/sr"
)

type screens struct {
	tasker   service.TaskerScreen
	seller   service.SellerScreen
	products *service.ProductsScreen
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	storage    port.DraftStorage
	submitter  port.RegistrationSubmitter
	store      *service.DraftService
	screens    screens
	httpServer *httphandler.HTTPServer
	closers    []func()
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initMetrics()
	app.initStorage()
	app.initSubmitter()
	app.initCoreService()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

func (app *App) initStorage() {
	const op = "App.initStorage"
	log := slog.With("op", op)
	dcfg := app.cfg.Draft

	switch dcfg.Backend {
	case config.BackendMemory:
		app.storage = storage.NewMemoryStorage()
	case config.BackendPostgres:
		db, err := storage.NewSQLDB(app.ctx, dcfg.PostgresDSN)
		if err != nil {
			app.fallDown(op, err)
		}
		app.closers = append(app.closers, db.Close)
		app.storage = storage.NewPostgresStorage(db)
	case config.BackendRedis:
		cl, err := storage.NewRedisClient(app.ctx, dcfg.RedisAddr)
		if err != nil {
			app.fallDown(op, err)
		}
		app.closers = append(app.closers, func() {
			if err := cl.Close(); err != nil {
				log.Error("failed to close redis client", "err", err)
			}
		})
		app.storage = storage.NewRedisStorage(cl, dcfg.RedisKey)
	default:
		app.storage = storage.NewFileStorage(dcfg.FilePath)
	}

	log.Info("draft storage is ready", "backend", dcfg.Backend)
}

func (app *App) initSubmitter() {
	const op = "App.initSubmitter"
	scfg := app.cfg.Submit

	if scfg.Sink != config.SinkKafka {
		app.submitter = httpclient.NewSubmitter(scfg.Endpoint, scfg.Timeout)
		return
	}

	var tlsCfg *tls.Config
	if scfg.Kafka.TLS.Enabled() {
		var err error
		tlsCfg, err = adapter.MakeTLSConfig(
			scfg.Kafka.TLS.CAFile,
			scfg.Kafka.TLS.CertFile,
			scfg.Kafka.TLS.KeyFile,
		)
		if err != nil {
			app.fallDown(op, err)
		}
	}

	serde := app.registrationSerde(tlsCfg)

	producer, err := kafka.NewRegistrationProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			scfg.Kafka.SeedBrokers, scfg.Kafka.Topic,
			scfg.Kafka.MaxMessageBytes, tlsCfg,
		),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.closers = append(app.closers, producer.Close)
	app.submitter = timeoutSubmitter{producer, scfg.Timeout}
}

func (app *App) registrationSerde(tlsCfg *tls.Config) schema.Serde {
	const op = "App.registrationSerde"
	kcfg := app.cfg.Submit.Kafka

	srOpts := []sr.ClientOpt{sr.URLs(kcfg.SchemaRegistryURLs...)}
	if tlsCfg != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(tlsCfg))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeRegistrationV1(
		app.ctx,
		schema.SubjectOpt(kcfg.Topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	return serde
}

func (app *App) initCoreService() {
	app.store = service.NewDraftService(app.storage, app.metrics)
	app.screens = screens{
		tasker: service.NewTaskerScreen(app.store),
		seller: service.NewSellerScreen(app.store),
		products: service.NewProductsScreen(
			app.store, app.submitter, app.metrics,
		),
	}
	app.screens.products.Resume(app.ctx)
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterRegistration(
		mux,
		app.screens.tasker,
		app.screens.seller,
		app.screens.products,
	)
	mux.Handle("GET /metrics",
		promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	handler := httphandler.AllowJSON(mux)
	s := httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.Submit.Timeout,
	)
	app.httpServer = &s
}

// Screens exposes the wired screens to interactive front ends.
func (app *App) Screens() (
	service.TaskerScreen, service.SellerScreen, *service.ProductsScreen,
) {
	return app.screens.tasker, app.screens.seller, app.screens.products
}

// Run starts the HTTP API. stopFn is called once the server stops.
func (app *App) Run(stopFn context.CancelFunc) {
	app.initInboundAdapters()
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	if app.httpServer != nil {
		app.httpServer.Close(ctx)
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
