package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelpath/engine/internal/config"
	"github.com/wheelpath/engine/pkg/core"
)

func unreachable() config.InfluxConfig {
	return config.InfluxConfig{
		Enabled:  true,
		Host:     "127.0.0.1",
		Port:     "1",
		Protocol: "http",
		Org:      "wheelpath",
		Bucket:   "player-poses",
	}
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	assert.Error(t, m.Connect(context.Background()))
}

func TestPosePoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	pt := PosePoint("park", "s1", core.PoseSample{
		Time: ts,
		Pose: core.Pose{Position: core.Position3D{X: 1.5, Y: 0, Z: -2}, Rotation: core.Rotation3D{Yaw: 90}},
	})
	line := influxdb2_write.PointToLineProtocol(pt, time.Second)
	assert.Contains(t, line, "player_pose,scenario=park,session=s1 ")
	assert.Contains(t, line, "x=1.5")
	assert.Contains(t, line, "yaw=90")
	assert.Contains(t, line, " 1700000000")
}

func TestEventPoint(t *testing.T) {
	id := uuid.New()
	pt := EventPoint("park", core.GameEvent{
		SessionID: id,
		Time:      time.Unix(1700000000, 0),
		Type:      core.EventDodgeFail,
		Delta:     -100,
		State:     core.GameState{Score: 400, NumCheckpoints: 1},
	})
	line := influxdb2_write.PointToLineProtocol(pt, time.Second)
	assert.Contains(t, line, "game_event,")
	assert.Contains(t, line, "type=DODGE_FAIL")
	assert.Contains(t, line, "delta=-100i")
	assert.Contains(t, line, "score=400i")
}

func TestBackupWriter_WhenServerDown(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "poses.gz")
	m := NewManager(unreachable(), zerolog.Nop(), backup)
	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	m.SetScenario("park")
	ctx := context.Background()
	require.NoError(t, m.RecordPose(ctx, "s1", core.PoseSample{Time: time.Unix(1, 0), Pose: core.Pose{Position: core.Position3D{X: 2}}}))
	require.NoError(t, m.RecordGameEvent(ctx, core.GameEvent{Time: time.Unix(2, 0), Type: core.EventGoal}))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	assert.Contains(t, string(data), "player_pose,scenario=park,session=s1")
	assert.Contains(t, string(data), "game_event,scenario=park")
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(unreachable(), zerolog.Nop(), "")
	err := m.WritePoint(PosePoint("", "", core.PoseSample{}))
	assert.Error(t, err)
}
