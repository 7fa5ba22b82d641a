// Package database opens the GORM connections used by the relational
// storage backends and owns the scenario/session schema migration.
package database

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wheelpath/engine/internal/model"
)

// MemoryDSN is the shared in-memory SQLite database used when no path is given.
const MemoryDSN = "file::memory:?cache=shared"

// Batch sizes for bulk inserts of pose samples.
const (
	postgresBatch = 10000
	sqliteBatch   = 2000
)

var errNoDumpPath = errors.New("sqlite file path not set")

// sqlitePragmas trade durability for insert speed; the file is a scratch
// copy that gets snapshotted with VACUUM INTO.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1",
	"PRAGMA journal_mode = MEMORY",
	"PRAGMA synchronous = OFF",
	"PRAGMA cache_size = -32000",
	"PRAGMA temp_store = MEMORY",
}

func gormConfig(batch int, prepare bool) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            prepare,
		SkipDefaultTransaction: true,
		CreateBatchSize:        batch,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// PostgresDSN builds the connection string from the db.* settings.
func PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
}

// GetPostgresDB opens the session database described by the db.* settings.
func GetPostgresDB() (*gorm.DB, error) {
	dialector := postgres.New(postgres.Config{DSN: PostgresDSN(), PreferSimpleProtocol: true})
	return gorm.Open(dialector, gormConfig(postgresBatch, false))
}

// GetSqliteDB opens the SQLite database at path, or the shared in-memory
// one when path is empty.
func GetSqliteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = MemoryDSN
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(sqliteBatch, true))
	if err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table in model.DatabaseModels.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DumpMemoryDBToDisk snapshots db into the file at path, replacing any
// previous snapshot.
func DumpMemoryDBToDisk(db *gorm.DB, path string) error {
	if path == "" {
		return errNoDumpPath
	}
	// VACUUM INTO refuses to overwrite
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old snapshot: %w", err)
	}
	if err := db.Exec("VACUUM INTO 'file:" + strings.ReplaceAll(path, "'", "''") + "'").Error; err != nil {
		return fmt.Errorf("snapshot sqlite db: %w", err)
	}
	return nil
}
