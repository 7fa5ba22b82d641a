package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/wheelpath/engine/internal/config"
	"github.com/wheelpath/engine/internal/influx"
	"github.com/wheelpath/engine/internal/logging"
	"github.com/wheelpath/engine/internal/storage"
	filestorage "github.com/wheelpath/engine/internal/storage/file"
	pgstorage "github.com/wheelpath/engine/internal/storage/postgres"
	sqlitestorage "github.com/wheelpath/engine/internal/storage/sqlite"
	wsstorage "github.com/wheelpath/engine/internal/storage/websocket"
)

// openStorage creates and initializes the configured backend.
func openStorage() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := createStorageBackend(storageCfg)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return nil, fmt.Errorf("init %s storage: %w", storageCfg.Type, err)
	}
	return backend, nil
}

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		Logger.Info("Postgres storage backend initialized")
		return pgstorage.New(pgstorage.Dependencies{
			LogManager: SlogManager,
		}), nil

	case "sqlite":
		dumpPath := storageCfg.SQLite.DumpPath
		if dumpPath == "" {
			dumpPath = filepath.Join(storageCfg.File.OutputDir, fmt.Sprintf("%s_%s.db", AppName, SessionStartTime.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
		}, SlogManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized", "dump", dumpPath)
		return backend, nil

	case "websocket":
		wsURL := httpToWS(viper.GetString("api.serverUrl")) + "/api"
		secret := viper.GetString("api.apiKey")
		Logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: secret,
			Logger: Logger,
		}), nil

	case "file", "":
		Logger.Info("File storage backend initialized", "dir", storageCfg.File.OutputDir)
		return filestorage.New(storageCfg.File), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}

// openTelemetry connects the pose telemetry sink when enabled. A failed ping
// leaves the manager writing to its backup file.
func openTelemetry(ctx context.Context) *influx.Manager {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	backup := filepath.Join(viper.GetString("logsDir"), fmt.Sprintf("%s_influx_%s.log.gz", AppName, SessionStartTime.Format("20060102_150405")))
	var w io.Writer
	if LogFile != nil {
		w = LogFile
	}
	m := influx.NewManager(cfg, logging.NewZerolog(w, viper.GetString("logLevel"), "influx"), backup)
	if err := m.Connect(ctx); err != nil {
		Logger.Warn("InfluxDB unavailable", "error", err)
	}
	return m
}
