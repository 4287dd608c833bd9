// Package server wires the blog backend together: configuration, logging,
// the database and its migrations, object storage, text generation, the
// services and the HTTP server. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/blogkeeper/internal/filex"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogkeeper/internal/server/rest"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/dmitrijs2005/blogkeeper/internal/server/storage"
	"github.com/dmitrijs2005/blogkeeper/internal/server/textgen"
)

type App struct {
	config         *config.Config
	rootLogger     logging.Logger
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	postService    *services.PostService
	commentService *services.CommentService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	l, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := l.With("module", "app")

	uploadDir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir init error: %w", err)
	}
	c.UploadDir = uploadDir

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	uploader, err := storage.NewS3Uploader(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	if c.GeminiAPIKey == "" {
		logger.Warn(ctx, "GEMINI_API_KEY is not set, text generation requests will fail")
	}
	generator := textgen.NewGemini(nil, c.GeminiBaseURL, c.GeminiModel, c.GeminiAPIKey)

	return &App{
		config:         c,
		rootLogger:     l,
		logger:         logger,
		db:             db,
		userService:    services.NewUserService(db, rm, c),
		postService:    services.NewPostService(db, rm, uploader, generator, l),
		commentService: services.NewCommentService(db, rm),
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config, app.rootLogger, app.userService, app.postService, app.commentService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or the server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
