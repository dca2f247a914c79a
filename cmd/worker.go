package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/careertodo/platform/internal/auth"
	"github.com/careertodo/platform/internal/core/events"
	"github.com/careertodo/platform/internal/verification"
	verificationpostgres "github.com/careertodo/platform/internal/verification/postgres"
	"github.com/careertodo/platform/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers like the verification expiry sweep and the event bus.`,
}

// Verification sweep worker command
var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Start the verification expiry sweep worker",
	Long:  `Periodically rewrites approved verification requests whose access window has elapsed to the expired status`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

// Event bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus and log verification lifecycle events`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	sweepInterval time.Duration
	sweepBatch    int
)

func startSweepWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	sqlDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm: %v\n", err)
		os.Exit(1)
	}

	sweepCfg := config.Verification
	if sweepInterval > 0 {
		sweepCfg.SweepInterval = sweepInterval
	}
	if sweepBatch > 0 {
		sweepCfg.SweepBatch = sweepBatch
	}

	svc := verification.NewService(
		verificationpostgres.NewRequestRepository(gormDB),
		verificationpostgres.NewUserDirectory(gormDB),
		auth.NewSubjectPolicy(),
		events.NewEventBus(log),
		log,
	)

	log.Info("starting verification sweep worker",
		"interval", sweepCfg.SweepInterval,
		"batch", sweepCfg.SweepBatch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runExpirySweep(ctx, svc, sweepCfg, log)
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down sweep worker", "signal", sig)
	cancel()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Warn("shutdown timeout reached, forcing exit")
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", "error", err)
	}
	log.Info("sweep worker shutdown complete")
}

func startEventWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	eventBus := events.NewEventBus(log)

	for _, eventType := range []string{
		events.EventTypeVerificationRequested,
		events.EventTypeVerificationApproved,
		events.EventTypeVerificationRejected,
		events.EventTypeVerificationExpired,
	} {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			log.Info("received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	log.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down event bus", "signal", sig)
	log.Info("event bus shutdown complete")
}

func init() {
	sweepWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Sweep interval (overrides config)")
	sweepWorkerCmd.Flags().IntVar(&sweepBatch, "batch", 0, "Maximum rows rewritten per sweep (overrides config)")

	workerCmd.AddCommand(sweepWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
