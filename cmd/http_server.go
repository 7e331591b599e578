package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/events"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	"github.com/frahmantamala/timekeeper/internal/system"
	"github.com/frahmantamala/timekeeper/internal/timerecording"
	"github.com/frahmantamala/timekeeper/internal/transport/rest"
	"github.com/frahmantamala/timekeeper/internal/transport/swagger"
	"github.com/frahmantamala/timekeeper/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *persistence.Database
	Router   *chi.Mux
	Logger   *slog.Logger
	Switch   *logger.Switch
	EventBus *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	if err := setupRoutes(deps); err != nil {
		log.Error("Failed to set up routes", "error", err)
		deps.DB.Stop()
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	log.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			deps.DB.Stop()
			os.Exit(1)
		}
	}

	deps.EventBus.Wait()
	deps.DB.Stop()
	log.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	log := deps.Logger
	roles := auth.NewRolesChecker(log)

	authService := auth.NewService(deps.DB, roles, log)
	trService := timerecording.NewService(deps.DB, roles, user.System, deps.EventBus, log)
	remover := timerecording.NewEmployeeRemover(trService, authService, log)
	systemService := system.NewService(deps.DB, roles, deps.Switch, log)

	handlers := rest.Handlers{
		Auth:          auth.NewHandler(authService, deps.Config.Security, log),
		TimeRecording: timerecording.NewHandler(trService, remover, log),
		System:        system.NewHandler(systemService, log),
		Health:        rest.NewHealthHandler(deps.DB),
	}
	rest.RegisterAllRoutes(deps.Router, handlers, deps.Config.Server.AllowedOrigins, log)

	doc, err := swagger.Load(context.Background())
	if err != nil {
		return err
	}
	missing, err := swagger.Undocumented(doc, deps.Router)
	if err != nil {
		return err
	}
	for _, route := range missing {
		log.Warn("route missing from the openapi document", "route", route)
	}
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if inMemory {
		config.Database.InMemory = true
	}

	log, sw := newLogger(config)
	slog.SetDefault(log)

	db, err := initDB(config.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(log)
	bus.Subscribe(events.AllEvents, auditHandler(log))

	roles := auth.NewRolesChecker(log)
	if db.IsEmpty() {
		if err := bootstrap(db, roles, bus, log); err != nil {
			db.Stop()
			return nil, fmt.Errorf("failed to bootstrap database: %w", err)
		}
	}
	if system.NewService(db, roles, sw, log).ApplyPersisted() {
		log.Info("applied persisted log settings", "settings", sw.Get())
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   chi.NewRouter(),
		Logger:   log,
		Switch:   sw,
		EventBus: bus,
	}, nil
}

// newLogger honours an explicit format; otherwise production gets JSON.
func newLogger(config *internal.Config) (*slog.Logger, *logger.Switch) {
	logCfg := config.Observability.Logging
	settings := logger.Settings{
		Audit: logCfg.Audit,
		Warn:  logCfg.Warn,
		Debug: logCfg.Debug,
		Trace: logCfg.Trace,
	}
	if logCfg.Format != "" {
		return logger.NewWithWriter(os.Stdout, logCfg.Format, settings)
	}
	return logger.New(config.Env, settings)
}

func initDB(cfg internal.DatabaseConfig, log *slog.Logger) (*persistence.Database, error) {
	if cfg.InMemory {
		log.Warn("running with an in-memory database, nothing will be saved")
		return persistence.NewInMemory(log), nil
	}
	return persistence.StartWithDiskPersistence(cfg.DataDir, log, persistence.WithQueueSize(cfg.QueueSize))
}

// bootstrap seeds a fresh database with an administrator employee and an
// invitation for it. The first user to register becomes ADMIN.
func bootstrap(db *persistence.Database, roles *auth.RolesChecker, bus events.Publisher, log *slog.Logger) error {
	tr := timerecording.NewService(db, roles, user.System, bus, log)
	employee, err := tr.CreateEmployee("Administrator")
	if err != nil {
		return err
	}

	invitation, err := auth.NewService(db, roles, log).CreateInvitation(user.System, employee.ID)
	if err != nil {
		return err
	}

	log.Warn("fresh database, register the administrator with this invitation code",
		"employee", employee.Name, "invitation", invitation.Code)
	return nil
}

func auditHandler(log *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		logger.Audit(log, "event", "event_type", event.EventType(), "event_id", event.EventID(), "payload", event.Payload())
		return nil
	}
}
