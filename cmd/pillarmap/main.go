// Pillar Map API - sensor and building contact lookups for the plant map.
//
// This is the main entry point for the Pillar Map API service. It serves:
//   - BLE sensor lookups by pillar and by sensor ID
//   - Driver and manager contacts per building
//
// The ble table lives in SQLite or PostgreSQL; the worker directory is a
// JSON file loaded once at startup. MQTT and InfluxDB are optional.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/pillarmap-api/migrations"

	"github.com/nerrad567/pillarmap-api/internal/api"
	"github.com/nerrad567/pillarmap-api/internal/ble"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/config"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/database"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/influxdb"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/logging"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/mqtt"
	"github.com/nerrad567/pillarmap-api/internal/worker"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Pillar Map API",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	bleService := ble.NewService(ble.NewSQLRepository(db.DB))

	// A bad worker file must not keep the sensor endpoints down
	directory := worker.LoadOrEmpty(cfg.Worker.DataFile, log.Component("worker"))
	workerService := worker.NewService(directory)

	deps := api.Deps{
		Config:  cfg.API,
		Logger:  log,
		BLE:     bleService,
		Workers: workerService,
		DB:      db,
		Checks:  make(map[string]api.HealthChecker),
		Version: version,
	}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := connectMQTT(cfg, directory, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		deps.MQTT = mqttClient
		deps.Checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB,
			influxdb.WithErrorHandler(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			}),
		)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		deps.Lookups = influxClient
		deps.Checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests)
	// 2. InfluxDB (if enabled, flushes pending points)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Pillar Map API stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PILLARMAP_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PILLARMAP_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openDatabase connects to the configured database and, when enabled,
// creates the ble table.
func openDatabase(ctx context.Context, cfg *config.Config, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "driver", db.Driver(), "path", db.Path())

	if !cfg.Database.Migrate {
		log.Info("database migrations skipped")
		return db, nil
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")
	return db, nil
}

// connectMQTT connects to the broker. The worker directory event is
// published retained from the on-connect hook, so it goes out once per
// (re)connect and late subscribers still see it.
func connectMQTT(cfg *config.Config, directory *worker.Directory, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg.MQTT,
		mqtt.WithLogger(log.Component("mqtt")),
		mqtt.WithOnConnect(func(c *mqtt.Client) {
			ev := mqtt.NewDirectoryEvent(directory.Source(), directory.Len())
			if pubErr := c.PublishDirectoryLoaded(ev); pubErr != nil {
				log.Warn("publishing worker directory event failed", "error", pubErr)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	return client, nil
}
