package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
)

const corridorTemplate = `name: corridor
rows:
  - "#####"
  - "#xx.#"
  - "#xxx#"
  - "#xxx#"
  - "#####"
`

// loadTestConfig writes a small level plus config into a temp dir and loads it
func loadTestConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	tplPath := filepath.Join(dir, "corridor.yaml")
	require.NoError(t, os.WriteFile(tplPath, []byte(corridorTemplate), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	body := `
game:
  template_file: ` + tplPath + `
  soft_walls: 1
  bomb_timer_ms: 48
  explosion_ms: 16
  death_grace_ms: 0
  max_episode_steps: 20
agent:
  hidden_units: [8]
  memory_size: 64
  batch_size: 4
  checkpoint_path: ` + filepath.Join(dir, "agent.json") + `
  checkpoint_every: 2
training:
  tick_ms: 16
  progress_every: 1
storage:
  path: ` + filepath.Join(dir, "episodes.db") + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	require.NoError(t, config.Init(cfgPath))
	return config.Get()
}

func TestBuildRuntime(t *testing.T) {
	cfg := loadTestConfig(t)

	rt, err := buildRuntime(context.Background(), cfg, 12345, zerolog.Nop())
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, 5, rt.engine.Rows())
	assert.Equal(t, 25, rt.agent.Config().StateSize)
	assert.Equal(t, []int{8}, rt.agent.Config().HiddenUnits)
	assert.NotEmpty(t, rt.session.ID())
	assert.Nil(t, rt.store)
}

func TestBuildRuntime_BadTemplate(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Game.TemplateFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildRuntime(context.Background(), cfg, 12345, zerolog.Nop())
	assert.Error(t, err)
}

func TestTrainLoop_RecordsAndCheckpoints(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	rt, err := buildRuntime(ctx, cfg, 12345, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, rt.attachStore(ctx))
	defer rt.Close()

	cfg.Training.MaxEpisodes = 3
	stats, err := trainLoop(ctx, rt, cfg.Training, cfg.Agent.CheckpointEvery)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Episodes)
	assert.Positive(t, stats.Ticks)
	assert.LessOrEqual(t, stats.Ticks, 3*20)
	assert.Equal(t, 3, rt.recorder.Saved())
	assert.FileExists(t, cfg.Agent.CheckpointPath)

	summary, err := rt.store.Summary(ctx, rt.session.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Episodes)
}

func TestTrainLoop_TickLimit(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	rt, err := buildRuntime(ctx, cfg, 12345, zerolog.Nop())
	require.NoError(t, err)
	defer rt.Close()

	cfg.Training.MaxTicks = 7
	stats, err := trainLoop(ctx, rt, cfg.Training, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Ticks)
	assert.Positive(t, stats.Elapsed, "elapsed time reaches the caller")
	assert.EqualValues(t, 7, rt.ticks.Load())
}

func TestTrainLoop_Cancelled(t *testing.T) {
	cfg := loadTestConfig(t)

	rt, err := buildRuntime(context.Background(), cfg, 12345, zerolog.Nop())
	require.NoError(t, err)
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = trainLoop(ctx, rt, cfg.Training, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckpointRestore(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	rt, err := buildRuntime(ctx, cfg, 12345, zerolog.Nop())
	require.NoError(t, err)
	rt.agent.SetEpsilon(0.25)
	rt.saveCheckpoint()
	require.NoError(t, rt.Close())

	restored, err := buildRuntime(ctx, cfg, 54321, zerolog.Nop())
	require.NoError(t, err)
	defer restored.Close()
	assert.InDelta(t, 0.25, restored.agent.Epsilon(), 1e-9)
}

func TestPrintScores(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	rt, err := buildRuntime(ctx, cfg, 12345, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, rt.attachStore(ctx))
	defer rt.Close()

	var empty bytes.Buffer
	require.NoError(t, printScores(ctx, rt.store, &empty, scoresQuery{Limit: 5}))
	assert.Contains(t, empty.String(), "No episodes recorded yet.")

	cfg.Training.MaxEpisodes = 2
	_, err = trainLoop(ctx, rt, cfg.Training, 0)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printScores(ctx, rt.store, &out, scoresQuery{Session: rt.session.ID(), Limit: 5}))
	assert.Contains(t, out.String(), "Episodes: 2")
	assert.Contains(t, out.String(), "Recent episodes")

	out.Reset()
	require.NoError(t, printScores(ctx, rt.store, &out, scoresQuery{Limit: 1, Top: true}))
	assert.Contains(t, out.String(), "Top episodes")
}

func TestHealthServer(t *testing.T) {
	hs, err := startHealthServer(config.HealthServerConfig{Host: "127.0.0.1", Port: 0}, zerolog.Nop())
	require.NoError(t, err)

	conn, err := grpc.NewClient(hs.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: trainerService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	hs.Stop()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}
