package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/handler"
	"github.com/el-feo/content-processing-sub001/handler/platforms"
	"github.com/el-feo/content-processing-sub001/internal/auth"
	"github.com/el-feo/content-processing-sub001/internal/fetch"
	"github.com/el-feo/content-processing-sub001/internal/notify"
	"github.com/el-feo/content-processing-sub001/internal/publish"
	"github.com/el-feo/content-processing-sub001/internal/render"
	"github.com/el-feo/content-processing-sub001/internal/request"
	"github.com/el-feo/content-processing-sub001/internal/secrets"
	"github.com/el-feo/content-processing-sub001/internal/worker"
	"github.com/el-feo/content-processing-sub001/observability"
	"github.com/el-feo/content-processing-sub001/storage"
	"github.com/el-feo/content-processing-sub001/storage/s3"
)

func main() {
	cfg := loadConfiguration()

	provider := newObservability(cfg)
	defer provider.Close()

	deps := initializeDependencies(cfg, provider)

	app := buildApplication(cfg, provider, deps)

	startApplication(cfg, provider, app)
}

// Dependencies holds the initialized pipeline components.
type Dependencies struct {
	worker    *worker.ConvertWorker
	validator *auth.TokenValidator
}

// loadConfiguration loads and validates the application configuration.
func loadConfiguration() *config.Config {
	provider := config.GetProvider()
	provider.MustLoad()
	return provider.MustGet()
}

// newObservability builds the logging and metrics provider.
func newObservability(cfg *config.Config) observability.Provider {
	return observability.NewProvider(&observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
}

// initializeDependencies builds the conversion pipeline stages.
func initializeDependencies(cfg *config.Config, provider observability.Provider) *Dependencies {
	secretSource := buildSecretSource(cfg, provider)

	validator, err := auth.NewTokenValidator(
		secretSource,
		cfg.Auth.PublicKeyPEM,
		cfg.Auth.GracePeriod,
		provider.Logger("auth"),
		provider.Metrics("auth"),
	)
	if err != nil {
		log.Fatalf("Failed to build token validator: %v", err)
	}

	storageFactory := sessionStorageFactory(cfg, provider)

	fetcher := fetch.NewFetcher(
		&cfg.Fetch,
		cfg.Convert.MaxDocumentBytes,
		storageFactory,
		provider.Logger("fetcher"),
		provider.Metrics("fetcher"),
	)

	renderer := render.NewRenderer(
		&cfg.Convert,
		provider.Logger("renderer"),
		provider.Metrics("renderer"),
	)

	publisher := publish.NewPublisher(
		&cfg.Publish,
		cfg.Convert.Workers,
		storageFactory,
		provider.Logger("publisher"),
		provider.Metrics("publisher"),
	)

	notifier := notify.NewNotifier(
		&cfg.Webhook,
		provider.Logger("notifier"),
		provider.Metrics("notifier"),
	)

	convertWorker := worker.NewConvertWorker(
		fetcher,
		renderer,
		publisher,
		notifier,
		secretSource,
		request.Options{
			AllowHTTP:           cfg.Convert.AllowHTTPURLs,
			AllowPrivateWebhook: cfg.Webhook.AllowPrivate,
			EndpointHosts:       endpointHosts(cfg),
		},
		provider.Logger("worker"),
		provider.Metrics("worker"),
	)

	return &Dependencies{worker: convertWorker, validator: validator}
}

// buildSecretSource picks the secret backend: a fixed value for local
// setups, Secrets Manager everywhere else.
func buildSecretSource(cfg *config.Config, provider observability.Provider) secrets.Source {
	if cfg.Auth.SecretValue != "" {
		return secrets.NewStatic(cfg.Auth.SecretValue)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := secrets.NewManagerClient(ctx, &cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to build Secrets Manager client: %v", err)
	}

	return secrets.NewManagerCache(client, cfg.Auth.SecretName, provider.Logger("secrets"))
}

// sessionStorageFactory builds per-request S3 clients from the caller's
// temporary credentials. Validation guarantees the triplet is complete
// before any stage asks for a client.
func sessionStorageFactory(cfg *config.Config, provider observability.Provider) func(ctx context.Context, creds *request.Credentials) (storage.ObjectStorage, error) {
	logger := provider.Logger("storage_s3")
	metrics := provider.Metrics("storage_s3")

	return func(ctx context.Context, creds *request.Credentials) (storage.ObjectStorage, error) {
		return s3.NewSessionClient(ctx, &cfg.AWS, creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken, logger, metrics)
	}
}

// endpointHosts derives the extra object-store hosts accepted in signed
// URLs from the endpoint override, for LocalStack and MinIO setups.
func endpointHosts(cfg *config.Config) []string {
	if cfg.AWS.Endpoint == "" {
		return nil
	}
	u, err := url.Parse(cfg.AWS.Endpoint)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	return []string{u.Hostname()}
}

// buildApplication assembles the handler with its middleware stack.
// Authentication runs after the default stack so every request is
// logged, but before payload validation and the worker.
func buildApplication(cfg *config.Config, provider observability.Provider, deps *Dependencies) *handler.Handler {
	return handler.NewFactory(deps.worker, provider).
		WithHandlerConfig(cfg.Handler).
		WithMiddleware(auth.Middleware(deps.validator, provider)).
		Create()
}

// startApplication runs the platform adapter until shutdown. The factory
// has already resolved "auto" to a concrete platform.
func startApplication(cfg *config.Config, provider observability.Provider, app *handler.Handler) {
	logger := provider.Logger("main")

	switch app.Config().Platform {
	case "lambda":
		logger.Info(context.Background(), "starting lambda runtime", observability.Fields{
			"service": cfg.ServiceName,
		})
		platforms.NewLambdaAdapter(app).Start()
	default:
		serveHTTP(cfg, logger, app)
	}
}

// serveHTTP runs the HTTP server and drains it on SIGINT/SIGTERM.
func serveHTTP(cfg *config.Config, logger observability.Logger, app *handler.Handler) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := platforms.NewHTTPAdapter(app)

	logger.Info(ctx, "http server listening", observability.Fields{
		"addr": cfg.HTTP.Addr(),
	})

	err := adapter.Serve(ctx, cfg.HTTP.Addr(), cfg.HTTP.ShutdownTimeout)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server failed: %v", err)
	}

	logger.Info(context.Background(), "http server stopped", nil)
}
