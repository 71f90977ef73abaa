package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger   *zap.Logger
	config   *Config
	server   *http.Server
	console  *Console
	cleanups []func()
}

// NewApp provides an instance of App wired for the configured role.
func NewApp(configFile, role string) (AppProvider, error) {
	config, err := LoadAndInitConfigs(configFile, role, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, clock)

	app := &App{logger: logger, config: config}
	// registered first so they run last.
	app.cleanups = []func(){
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Println("error during flushing of logs: ", ferr)
			}
		},
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Println("error during closing of log file: ", cerr)
			}
		},
	}

	if config.Role == RoleConsole {
		api := NewBooksClient(logger, clock, config.Backend.BaseURL, config.Backend.Timeout)
		app.console = NewConsole(logger, NewBookListView(logger, api), NewSurveyDriver())
		return app, nil
	}

	stats := &Statistics{
		version:   config.GitTag,
		container: IsAppRunningInDocker(),
		started:   clock.Now(),
		runtime:   runtime.Version(),
		platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		stats.version = config.GitCommit
	}
	core := NewCore(logger, config, clock, NewIDsHandler(), stats)

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := core.MiddlewaresStacks()
	mm := &MiddlewareMap{
		public: middlewaresPublic.Chain,
		ops:    middlewaresOps.Chain,
	}

	router := core.SetupOpsRoutes(httprouter.New(), mm)
	var handler http.Handler
	switch config.Role {
	case RoleBackend:
		storage, serr := NewBookStorage(logger, config)
		if serr != nil {
			app.Clean()
			return nil, fmt.Errorf("failed to setup %s storage: %s", config.Storage.Kind, serr)
		}
		app.onClean(func() {
			if cerr := storage.Close(); cerr != nil {
				logger.Error("failed to close storage", zap.Error(cerr))
			}
		})
		handler = WithCORS(NewBookHandler(core, storage).SetupBookRoutes(router, mm))
	default:
		api := NewBooksClient(logger, clock, config.Backend.BaseURL, config.Backend.Timeout)
		sessions := NewSessions(logger, &config.Session, core.ids, api)
		app.onClean(sessions.Close)
		handler = NewEditorHandler(core, sessions).SetupEditorRoutes(router, mm)
	}

	// Wrap the router with the default http timeout handler.
	handlerWithTimeout := http.TimeoutHandler(
		handler,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the server definition.
	app.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        handlerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}
	return app, nil
}

// NewBookStorage opens the storage selected by the configuration.
func NewBookStorage(logger *zap.Logger, config *Config) (BookStorage, error) {
	switch config.Storage.Kind {
	case StorageRedis:
		client, err := GetRedisClient(config)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		return NewRedisBookStorage(logger, client), nil
	case StorageBoltDB:
		client, err := GetBoltDBClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
		}
		return NewBoltBookStorage(logger, &config.BoltDB, client), nil
	default:
		return NewMemoryBookStorage(logger), nil
	}
}

// Run starts the role main loop and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.console != nil {
		err := app.console.Run(nCtx)
		app.logger.Info("console stopped", zap.Error(err))
		return err
	}

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// onClean registers f to run before the cleanups already registered.
func (app *App) onClean(f func()) {
	app.cleanups = append([]func(){f}, app.cleanups...)
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("server stopping. reason: requested to stop")
		} else {
			app.logger.Info("server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("server graceful shutdown timed out")
		default:
			app.logger.Info("server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}
