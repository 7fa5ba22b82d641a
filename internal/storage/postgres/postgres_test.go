package postgres

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/logging"
	"github.com/wheelpath/engine/internal/storage"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestNew(t *testing.T) {
	b := New(Dependencies{})
	require.NotNil(t, b)
	assert.NoError(t, b.Close())
}

func TestInit_UnreachableServer(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "127.0.0.1")
	viper.Set("db.port", "1")

	b := New(Dependencies{LogManager: logging.NewSlogManager()})
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestInitClose_InjectedDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	b := New(Dependencies{DB: db})
	require.NoError(t, b.Init())

	ctx := context.Background()
	require.NoError(t, b.SaveScenario(ctx, "park", []anchorfile.AnchorRecord{{Name: "CloudAnchor0"}}))
	names, err := b.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"park"}, names)

	require.NoError(t, b.Close())
}
