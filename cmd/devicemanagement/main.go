// Automak Device Management - sensor registry service
//
// This is the main entry point of the device management service. It keeps the
// registry of field sensors, exposes it over a REST and WebSocket API, and
// tells the monitoring subsystem when a sensor is enabled or disabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/automak-sensors/device-management/migrations"

	"github.com/automak-sensors/device-management/internal/api"
	"github.com/automak-sensors/device-management/internal/audit"
	"github.com/automak-sensors/device-management/internal/infrastructure/amqp"
	"github.com/automak-sensors/device-management/internal/infrastructure/config"
	"github.com/automak-sensors/device-management/internal/infrastructure/database"
	"github.com/automak-sensors/device-management/internal/infrastructure/influxdb"
	"github.com/automak-sensors/device-management/internal/infrastructure/logging"
	"github.com/automak-sensors/device-management/internal/infrastructure/mqtt"
	"github.com/automak-sensors/device-management/internal/monitoring"
	"github.com/automak-sensors/device-management/internal/sensor"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnvVar      = "AUTOMAK_CONFIG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service together and blocks until ctx is cancelled.
// It is separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting device management",
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

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	checks := map[string]api.HealthCheckFunc{"database": db.HealthCheck}

	monitor, closeMonitor, err := startMonitoring(ctx, cfg, log, checks)
	if err != nil {
		return fmt.Errorf("starting monitoring client: %w", err)
	}
	defer closeMonitor()

	auditRepo := audit.NewSQLiteRepository(db.DB)

	registry := sensor.NewRegistry(sensor.NewSQLiteRepository(db.DB), monitor, sensor.UUIDGenerator{})
	registry.SetLogger(log)
	registry.SetAuditor(auditRepo)
	registry.SetPageLimits(cfg.Pagination.DefaultSize, cfg.Pagination.MaxSize)

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		registry.SetStateRecorder(influxClient)
		checks["influxdb"] = influxClient.HealthCheck
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Logger:       log,
		Registry:     registry,
		Audit:        auditRepo,
		DB:           db.DB,
		HealthChecks: checks,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

func getConfigPath() string {
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// startMonitoring builds the monitoring client selected by
// monitoring.backend, opening the broker connection it needs. The returned
// cleanup closes that connection. Broker health checks are added to checks.
func startMonitoring(ctx context.Context, cfg *config.Config, log *logging.Logger,
	checks map[string]api.HealthCheckFunc) (sensor.Monitor, func(), error) {
	noCleanup := func() {}

	switch cfg.Monitoring.Backend {
	case config.MonitoringBackendHTTP:
		client := monitoring.NewHTTPClient(cfg.Monitoring.HTTP)
		client.SetLogger(log)
		log.Info("monitoring backend: http", "base_url", cfg.Monitoring.HTTP.BaseURL)
		return client, noCleanup, nil

	case config.MonitoringBackendMQTT:
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		checks["mqtt"] = mqttClient.HealthCheck
		log.Info("MQTT connected",
			"broker", mqtt.BrokerURL(cfg.MQTT),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		client := monitoring.NewMQTTClient(mqttClient, cfg.Monitoring.TopicPrefix, mqttClient.QoS())
		client.SetLogger(log)
		return client, func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}, nil

	case config.MonitoringBackendAMQP:
		conn := amqp.New(cfg.AMQP)
		conn.SetLogger(log)
		if err := conn.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("connecting to AMQP: %w", err)
		}
		checks["amqp"] = conn.HealthCheck
		log.Info("AMQP connected", "exchange", cfg.Monitoring.Exchange)

		client := monitoring.NewAMQPClient(conn, cfg.Monitoring.Exchange)
		client.SetLogger(log)
		return client, func() {
			log.Info("closing AMQP connection")
			if closeErr := conn.Close(); closeErr != nil {
				log.Error("error closing AMQP", "error", closeErr)
			}
		}, nil

	case config.MonitoringBackendNone:
		log.Warn("monitoring backend disabled, enable and disable only update the registry")
		return monitoring.NewNoopClient(log), noCleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown monitoring backend %q", cfg.Monitoring.Backend)
	}
}

// healthCheck runs every registered dependency check once.
func healthCheck(ctx context.Context, checks map[string]api.HealthCheckFunc) error {
	for name, check := range checks {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
