// Package server initializes and runs the journal backend: it opens the
// database and runs migrations, connects the object store and the review
// broker, and serves gRPC and Prometheus metrics until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/journal/internal/logging"
	"github.com/dmitrijs2005/journal/internal/server/auth"
	"github.com/dmitrijs2005/journal/internal/server/blob"
	"github.com/dmitrijs2005/journal/internal/server/config"
	"github.com/dmitrijs2005/journal/internal/server/events"
	"github.com/dmitrijs2005/journal/internal/server/mailer"
	"github.com/dmitrijs2005/journal/internal/server/metrics"
	"github.com/dmitrijs2005/journal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/journal/internal/server/services"

	gs "github.com/dmitrijs2005/journal/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	metrics     *metrics.Metrics
	publisher   events.Publisher
	userService *services.UserService
	postService *services.PostService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, blob.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		PresignTTL:   c.PresignValidityDuration,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if c.NATSURL != "" {
		p, err := events.NewNATSPublisher(c.NATSURL, c.ReviewSubject)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("nats init error: %w", err)
		}
		publisher = p
	} else {
		logger.Warn(ctx, "NATS URL not set, review requests are dropped")
	}

	var sender mailer.Mailer
	if c.SMTPAddr != "" {
		sender = mailer.NewSMTPMailer(c.SMTPAddr, c.SMTPUser, c.SMTPPassword, c.MailFrom)
	} else {
		sender = mailer.NewLogMailer(logger)
	}

	var github auth.DeviceFlow
	if c.GitHubClientID != "" {
		github = auth.NewGitHub(c.GitHubClientID, c.GitHubClientSecret)
	}

	m := metrics.New()
	opts := []services.Option{services.WithLogger(logger), services.WithObserver(m)}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		metrics:     m,
		publisher:   publisher,
		userService: services.NewUserService(db, rm, blobs, sender, github, c, opts...),
		postService: services.NewPostService(db, rm, blobs, publisher, opts...),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.postService,
		app.config.SecretKey, app.metrics.UnaryServerInterceptor())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context) {
	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := app.metrics.Serve(ctx, app.config.MetricsAddr); err != nil {
		app.logger.Error(ctx, "metrics server stopped", "err", err)
	}
}

// Run serves until ctx is canceled or a shutdown signal arrives, then
// releases the broker connection and the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx)
		}()
	}

	wg.Wait()

	app.publisher.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "err", err)
	}
	app.logger.Info(ctx, "Stopped")
}
