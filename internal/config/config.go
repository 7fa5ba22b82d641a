package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/internal/path"
	"github.com/wheelpath/engine/internal/scene"
	"github.com/wheelpath/engine/internal/scoring"
)

// FileName is the config file looked up in the config directory.
const FileName = "wheelpath.cfg.json"

// FileConfig holds settings of the scenario file storage backend
type FileConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings of the SQLite storage backend
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	File   FileConfig   `json:"file" mapstructure:"file"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds the pose telemetry sink settings
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("path.samplesPerSegment", path.DefaultSamplesPerSegment)
	viper.SetDefault("path.roadOffset", path.DefaultRoadOffset)
	viper.SetDefault("path.changeEpsilon", 0.0)
	viper.SetDefault("path.maxAnchors", scene.DefaultMaxAnchors)
	viper.SetDefault("path.walkerStretch", 1.0)

	def := scoring.DefaultConfig()
	viper.SetDefault("scoring.checkpointScore", def.CheckpointScore)
	viper.SetDefault("scoring.samplePenalty", def.SamplePenalty)
	viper.SetDefault("scoring.dodgePenalty", def.DodgePenalty)
	viper.SetDefault("scoring.offRouteDistance", def.OffRouteDistance)
	viper.SetDefault("scoring.followOffset", def.FollowOffset)
	viper.SetDefault("scoring.followScale", def.FollowScale)

	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.file.outputDir", "./scenarios")
	viper.SetDefault("storage.file.compressOutput", false)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wheelpath")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "wheelpath")
	viper.SetDefault("influx.bucket", "player-poses")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "wheelpath")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("geo.originLon", 0.0)
	viper.SetDefault("geo.originLat", 0.0)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetSceneConfig returns curve and scene tuning.
func GetSceneConfig() scene.Config {
	return scene.Config{
		Path: path.Config{
			SamplesPerSegment: viper.GetInt("path.samplesPerSegment"),
			RoadOffset:        viper.GetFloat64("path.roadOffset"),
		},
		ChangeEpsilon: viper.GetFloat64("path.changeEpsilon"),
		MaxAnchors:    viper.GetInt("path.maxAnchors"),
	}
}

// GetScoringConfig returns the scoring rules.
func GetScoringConfig() scoring.Config {
	return scoring.Config{
		CheckpointScore:  viper.GetInt("scoring.checkpointScore"),
		SamplePenalty:    viper.GetInt("scoring.samplePenalty"),
		DodgePenalty:     viper.GetInt("scoring.dodgePenalty"),
		OffRouteDistance: viper.GetFloat64("scoring.offRouteDistance"),
		FollowOffset:     viper.GetFloat64("scoring.followOffset"),
		FollowScale:      viper.GetFloat64("scoring.followScale"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		File: FileConfig{
			OutputDir:      viper.GetString("storage.file.outputDir"),
			CompressOutput: viper.GetBool("storage.file.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the telemetry sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGeoOrigin returns where local scene metres are pinned on the globe.
func GetGeoOrigin() geo.Origin {
	return geo.Origin{
		Longitude: viper.GetFloat64("geo.originLon"),
		Latitude:  viper.GetFloat64("geo.originLat"),
	}
}

// WalkerStretch is the sub-step factor of the moving object.
func WalkerStretch() float64 {
	return viper.GetFloat64("path.walkerStretch")
}
