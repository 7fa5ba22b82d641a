package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/wheelpath/engine/internal/config"
	"github.com/wheelpath/engine/internal/logging"
	intOtel "github.com/wheelpath/engine/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "wheelpath"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry; a disabled provider hands out no-op meters
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	SessionStartTime time.Time = time.Now()

	// closed on shutdown, in reverse order
	closers []io.Closer
)

// command is one CLI subcommand.
type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

var commands = map[string]command{
	"curve":   {usage: "curve [-road] [-at x,z] [-trail json] <scenario>", run: runCurve},
	"geojson": {usage: "geojson [-o file] <scenario>", run: runGeoJSON},
	"import":  {usage: "import [-name scenario] <file.json>", run: runImport},
	"list":    {usage: "list", run: runList},
	"watch":   {usage: "watch", run: runWatch},
	"replay":  {usage: "replay [-mode static|moving] [-velocity n] [-reach m] [-upload [-tag t]] <scenario>", run: runReplay},
}

func usage() {
	fmt.Fprintf(os.Stderr, "%s %s (%s)\n\nUsage:\n  %s [-config dir] <command> [args]\n\nCommands:\n", AppName, CurrentVersion, BuildDate, AppName)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

// setup loads the config and builds the logging stack: console, session log
// file, optional OTel export and an optional Graylog sink.
func setup(configDir string) {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	// keep the previous log of the same second instead of appending to it
	if _, err := os.Stat(LogFilePath); err == nil {
		_ = os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	otelCfg := config.GetOTelConfig()
	var logWriter io.Writer = io.Discard
	if LogFile != nil {
		logWriter = LogFile
	}
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		OTelProvider, _ = intOtel.New(intOtel.Config{})
	} else if otelCfg.Enabled {
		Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	}

	var extra []slog.Handler
	if viper.GetBool("graylog.enabled") {
		h, closer, err := logging.NewGraylogHandler(viper.GetString("graylog.address"), viper.GetString("logLevel"))
		if err != nil {
			Logger.Warn("Graylog disabled", "error", err)
		} else {
			extra = append(extra, h)
			closers = append(closers, closer)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider.Enabled() {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()
	Logger.Debug("Logging to file", "path", LogFilePath)
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if counters, err := OTelProvider.Counters(ctx); err == nil && len(counters) > 0 {
		attrs := make([]any, 0, 2*len(counters))
		for _, c := range counters {
			attrs = append(attrs, c.Name, c.Value)
		}
		Logger.Info("Run metrics", attrs...)
	}
	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
	if err := OTelProvider.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to shut down OTel: %v\n", err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

func main() {
	configDir := flag.String("config", defaultConfigDir(), "directory containing "+config.FileName)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}

	setup(*configDir)

	ctx, stop := notifyContext()
	err := cmd.run(ctx, args[1:])
	stop()
	if err != nil {
		Logger.Error("Command failed", "command", args[0], "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
	}
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}

// defaultConfigDir is the directory of the executable, so a config file
// shipped next to the binary is picked up.
func defaultConfigDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
