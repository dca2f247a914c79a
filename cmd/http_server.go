package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/auth"
	authpostgres "github.com/careertodo/platform/internal/auth/postgres"
	"github.com/careertodo/platform/internal/core/events"
	"github.com/careertodo/platform/internal/leaderboard"
	leaderboardpostgres "github.com/careertodo/platform/internal/leaderboard/postgres"
	"github.com/careertodo/platform/internal/reputation"
	reputationpostgres "github.com/careertodo/platform/internal/reputation/postgres"
	"github.com/careertodo/platform/internal/roles"
	"github.com/careertodo/platform/internal/transport/rest"
	"github.com/careertodo/platform/internal/transport/swagger"
	"github.com/careertodo/platform/internal/user"
	userpostgres "github.com/careertodo/platform/internal/user/postgres"
	"github.com/careertodo/platform/internal/verification"
	verificationpostgres "github.com/careertodo/platform/internal/verification/postgres"
	"github.com/careertodo/platform/pkg/logger"
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
	Config              *internal.Config
	DB                  *sqlx.DB
	Router              *chi.Mux
	Handlers            rest.Handlers
	VerificationService *verification.Service
	Logger              *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// The sweep loop rewrites elapsed approvals in the background so
	// stored statuses converge with the derived ones.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runExpirySweep(sweepCtx, deps.VerificationService, deps.Config.Verification, deps.Logger)

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		stopSweep()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopSweep()
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func runExpirySweep(ctx context.Context, svc *verification.Service, cfg internal.VerificationConfig, log *slog.Logger) {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	batch := cfg.SweepBatch
	if batch <= 0 {
		batch = 500
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := internal.WithTimeout(ctx, time.Minute)
			if _, err := svc.SweepExpired(sweepCtx, batch); err != nil {
				log.Error("expiry sweep failed", "error", err)
			}
			cancel()
		}
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, fmt.Errorf("openapi spec validation failed: %w", err)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBACAuthorization(auth.NewPermissionChecker(), log)

	userService := user.NewService(userpostgres.NewUserRepository(gormDB))
	userHandler := user.NewHandler(userService)

	eventBus := events.NewEventBus(log)
	verificationService := verification.NewService(
		verificationpostgres.NewRequestRepository(gormDB),
		verificationpostgres.NewUserDirectory(gormDB),
		auth.NewSubjectPolicy(),
		eventBus,
		log,
	)
	verificationHandler := verification.NewHandler(verificationService)

	reputationService := reputation.NewService(
		reputationpostgres.NewScoreRepository(gormDB),
		verificationService,
		log,
	)
	reputationHandler := reputation.NewHandler(reputationService)

	leaderboardService := leaderboard.NewService(leaderboardpostgres.NewEntryRepository(gormDB), log)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:         authHandler,
			RBAC:         rbac,
			User:         userHandler,
			Reputation:   reputationHandler,
			Leaderboard:  leaderboardHandler,
			Verification: verificationHandler,
			Roles:        roles.NewHandler(),
		},
		VerificationService: verificationService,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
