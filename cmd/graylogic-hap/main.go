// Gray Logic HAP - accessory server
//
// This is the main entry point for the Gray Logic accessory server. It
// publishes a lightbulb accessory over HTTP and WebSocket, persists the
// device identity, and optionally mirrors characteristic state to MQTT
// and InfluxDB.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-hap/migrations"

	"github.com/nerrad567/gray-logic-hap/internal/accessory"
	"github.com/nerrad567/gray-logic-hap/internal/api"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hap/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hap/internal/relay"
	"github.com/nerrad567/gray-logic-hap/internal/storage"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic HAP",
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

	// The database is only opened for the sqlite storage backend.
	var db *database.DB
	var sqlDB *sql.DB
	if cfg.Storage.Backend == storage.BackendSQLite {
		db, err = database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database ready", "path", db.Path())
		sqlDB = db.DB
	}

	st, err := storage.Open(cfg.Storage, sqlDB)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	device, _ := buildDevice(cfg.Accessory)
	device.SetLogger(log)
	if err := device.Load(st); err != nil {
		return fmt.Errorf("loading device state: %w", err)
	}
	log.Info("device ready",
		"identifier", device.Identifier(),
		"config_number", device.ConfigNumber(),
		"storage", cfg.Storage.Backend,
	)
	device.AddEventSink(changeLogger{log: log})

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = startMQTTRelay(ctx, cfg.MQTT, device, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
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
		device.AddEventSink(relay.NewHistoryRecorder(influxClient))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Device:  device,
		Version: version,
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

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	if err := device.Save(st); err != nil {
		log.Error("saving device state", "error", err)
	}
	log.Info("Gray Logic HAP stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildDevice assembles the published accessory tree.
func buildDevice(cfg config.AccessoryConfig) (*accessory.Device, *accessory.Lightbulb) {
	bulb := accessory.NewLightbulb()
	lamp := accessory.New(accessory.Info{
		Name:             cfg.Name,
		Manufacturer:     cfg.Manufacturer,
		Model:            cfg.Model,
		SerialNumber:     cfg.SerialNumber,
		FirmwareRevision: cfg.Firmware,
	}, bulb.Service)

	device := accessory.NewDevice()
	device.AddAccessory(lamp)
	return device, bulb
}

// startMQTTRelay connects to the broker and mirrors the device onto it.
func startMQTTRelay(ctx context.Context, cfg config.MQTTConfig, device *accessory.Device, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	r := relay.NewMQTTRelay(client, device, byte(cfg.QoS))
	r.SetLogger(log)
	if err := r.Start(); err != nil {
		client.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("starting MQTT relay: %w", err)
	}
	device.AddEventSink(r)
	go r.Run(ctx)

	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)
	return client, nil
}

// changeLogger logs every characteristic change at debug level.
type changeLogger struct {
	log *logging.Logger
}

func (l changeLogger) CharacteristicChanged(ev accessory.Event) {
	l.log.Debug("characteristic changed",
		"aid", ev.AID,
		"iid", ev.IID,
		"value", ev.Value,
		"origin", ev.Origin,
	)
}

// healthCheck verifies the optional infrastructure connections. Nil
// clients are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
