package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/auth"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/client"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/config"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/database"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/device"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/logger"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/queue"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/service"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/telemetry"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/tracker"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigPath string
	EnvFile    string
	PrettyJSON bool

	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	kv       storage.KeyValueStore
	api      *client.APIClient
	deviceID string
	shifts   *service.ShiftService
	reports  *service.ReportService
	worker   *service.SyncWorker
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "shift-tracker",
		Short:        "Offline-first shift and worklog tracker",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the sync worker and the local API
  shift-tracker serve

  # Start a shift, take a break, come back
  shift-tracker open
  shift-tracker worklog open --reference-id lunch --name Lunch --type pause
  shift-tracker worklog finish

  # Time spent so far
  shift-tracker report --pretty
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.bootstrap(cmd.Context())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.Close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("SHIFT_TRACKER_CONFIG", "config/local.yaml"), "Path to configuration file")
	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", envOr("SHIFT_TRACKER_ENV_FILE", ".env"), "Dotenv file loaded before the configuration")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newFinishCmd(app))
	cmd.AddCommand(newReopenCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newWorklogCmd(app))
	cmd.AddCommand(newTypesCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newSyncCmd(app))

	return cmd
}

// bootstrap wires the stores, the staff client and the services
func (app *App) bootstrap(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if app.EnvFile != "" {
		if err := godotenv.Load(app.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", app.EnvFile, err)
		}
	}

	cfg, err := config.LoadConfig(app.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.cfg = cfg

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = log

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db
	app.kv = storage.NewSQLiteStore(db.DB, log.Logger)

	deviceID, err := device.NewDeviceManager(app.kv).Resolve(cfg.Device.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve device id: %w", err)
	}
	app.deviceID = deviceID
	log.Debug("Using device ID", zap.String("device_id", deviceID))

	app.api = client.NewAPIClient(
		cfg.Backend.BaseURL,
		cfg.Backend.AccessToken,
		cfg.Backend.Client,
		time.Duration(cfg.Backend.Timeout)*time.Second,
		log.Logger,
	)
	app.api.SetDeviceID(deviceID)

	var identity service.Identity
	if cfg.Backend.AccessToken != "" {
		identity = auth.NewTokenIdentity(cfg.Backend.AccessToken)
	}

	events := tracker.NewTimeTracker(db.DB, deviceID, log.Logger)
	reporter := telemetry.NewZapReporter(log.Logger)
	app.shifts = service.NewShiftService(
		app.api,
		service.NewWorkLogService(app.api, reporter, log.Logger),
		queue.NewOfflineQueue(app.kv, log.Logger),
		events,
		app.kv,
		identity,
		reporter,
		service.CacheTTL{
			WorkLogTypes:  cfg.Cache.WorkLogTypesTTL,
			Authorization: cfg.Cache.AuthorizationTTL,
		},
		log.Logger,
	)
	app.reports = service.NewReportService(events, app.kv, reporter, log.Logger)
	app.worker = service.NewSyncWorker(app.shifts, app.kv, cfg.Sync.Interval, log.Logger)

	if wiped, err := app.shifts.EnsureCurrentUser(ctx); err != nil {
		log.Warn("Failed to check the signed in user", zap.Error(err))
	} else if wiped {
		log.Info("Local shift data belonged to another user and was deleted")
	}
	return nil
}

// Close releases the database and flushes the logger
func (app *App) Close() error {
	var err error
	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
		app.db = nil
	}
	if app.log != nil {
		_ = app.log.Sync()
	}
	return err
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
