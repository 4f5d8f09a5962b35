package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals() {
	mu.Lock()
	cfg = nil
	v = nil
	mu.Unlock()
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInit(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", `
game:
  soft_walls: 40
  bomb_timer_ms: 2000
agent:
  hidden_units: [32, 16]
  activation: relu
rewards:
  death: -5
server:
  health:
    port: 8080
`)
	resetGlobals()

	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 40, c.Game.SoftWalls)
	assert.Equal(t, 2*time.Second, c.Game.BombTimer())
	assert.Equal(t, []int{32, 16}, c.Agent.HiddenUnits)
	assert.Equal(t, "relu", c.Agent.Activation)
	assert.Equal(t, -5.0, c.Rewards.Death)
	assert.Equal(t, 1.0, c.Rewards.Alive)
	assert.Equal(t, 8080, c.Server.Health.Port)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	resetGlobals()

	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, 60, c.Game.SoftWalls)
	assert.Equal(t, 3*time.Second, c.Game.BombTimer())
	assert.Equal(t, 300*time.Millisecond, c.Game.Explosion())
	assert.Equal(t, 350*time.Millisecond, c.Game.DeathGrace())
	assert.Equal(t, 3, c.Game.BlastSize)
	assert.Equal(t, []int{24, 24}, c.Agent.HiddenUnits)
	assert.Equal(t, "tanh", c.Agent.Activation)
	assert.Equal(t, 2000, c.Agent.MemorySize)
	assert.Equal(t, 32, c.Agent.BatchSize)
	assert.Equal(t, 0.95, c.Agent.Gamma)
	assert.Equal(t, 0.01, c.Agent.EpsilonMin)
	assert.Equal(t, 0.995, c.Agent.EpsilonDecay)
	assert.Equal(t, 1.0, c.Rewards.Alive)
	assert.Equal(t, -10.0, c.Rewards.Death)
	assert.Equal(t, 16*time.Millisecond, c.Training.Tick())
	assert.Equal(t, "console", c.Logging.Format)
	assert.Equal(t, WatchViewConfig{FrameMs: 50, StepsPerFrame: 3, MaxSteps: 200}, c.UI.Watch)
}

func TestInit_MalformedFile(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", "game: [unterminated")
	resetGlobals()

	assert.Error(t, Init(configFile))
}

func TestInit_InvalidValues(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", `
agent:
  batch_size: 64
  memory_size: 10
`)
	resetGlobals()

	err := Init(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent.memory_size")
}

func TestEnvironmentVariables(t *testing.T) {
	resetGlobals()
	t.Setenv("BRL_GAME_SOFT_WALLS", "12")
	t.Setenv("BRL_SERVER_HEALTH_PORT", "9090")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 12, c.Game.SoftWalls)
	assert.Equal(t, 9090, c.Server.Health.Port)
}

func TestSet(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))

	require.NoError(t, Set("game.soft_walls", 35))
	require.NoError(t, Set("logging.level", "debug"))

	c := Get()
	assert.Equal(t, 35, c.Game.SoftWalls)
	assert.Equal(t, "debug", c.Logging.Level)

	assert.Error(t, Set("agent.gamma", 1.5))
	assert.Equal(t, 0.95, Get().Agent.Gamma, "rejected update must not replace the config")
}

func TestGetHelpers(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))

	require.NoError(t, Set("test.string", "hello"))
	require.NoError(t, Set("test.int", 42))
	require.NoError(t, Set("test.bool", true))
	require.NoError(t, Set("test.float", 3.14))

	assert.Equal(t, "hello", GetString("test.string"))
	assert.Equal(t, 42, GetInt("test.int"))
	assert.Equal(t, true, GetBool("test.bool"))
	assert.Equal(t, 3.14, GetFloat64("test.float"))
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	baseConfig := writeConfig(t, tmpDir, "config.yaml", `
game:
  soft_walls: 20
server:
  health:
    port: 50051
`)
	writeConfig(t, tmpDir, "config.prod.yaml", `
game:
  soft_walls: 30
logging:
  level: error
  format: json
`)
	resetGlobals()

	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, 30, c.Game.SoftWalls)
	assert.Equal(t, 50051, c.Server.Health.Port)
	assert.Equal(t, "error", c.Logging.Level)
	assert.Equal(t, "json", c.Logging.Format)

	require.NoError(t, LoadEnvironmentConfig("staging"), "a missing overlay is not an error")
}

func TestValidate(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))
	base := Get()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative soft walls", func(c *Config) { c.Game.SoftWalls = -1 }},
		{"zero soft walls", func(c *Config) { c.Game.SoftWalls = 0 }},
		{"zero bomb timer", func(c *Config) { c.Game.BombTimerMs = 0 }},
		{"negative grace", func(c *Config) { c.Game.DeathGraceMs = -1 }},
		{"no hidden layers", func(c *Config) { c.Agent.HiddenUnits = nil }},
		{"unknown activation", func(c *Config) { c.Agent.Activation = "sigmoid" }},
		{"epsilon min above start", func(c *Config) { c.Agent.EpsilonMin = 2 }},
		{"zero decay", func(c *Config) { c.Agent.EpsilonDecay = 0 }},
		{"negative monitor interval", func(c *Config) { c.Training.MonitorSec = -1 }},
		{"bad port", func(c *Config) { c.Server.Health.Port = 70000 }},
		{"storage without path", func(c *Config) { c.Storage.Path = "" }},
		{"bad color", func(c *Config) { c.UI.Colors.Bomb = [3]int{0, 0, 300} }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	require.NoError(t, Validate(&base))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.Agent.HiddenUnits = append([]int(nil), base.Agent.HiddenUnits...)
			tt.mutate(&c)
			assert.Error(t, Validate(&c))
		})
	}
}

func TestWatchConfig(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", "logging:\n  level: info\n")
	resetGlobals()
	require.NoError(t, Init(configFile))

	changed := make(chan Config, 4)
	WatchConfig(func(c Config) { changed <- c }, nil)

	require.NoError(t, os.WriteFile(configFile, []byte("logging:\n  level: warn\n"), 0644))

	select {
	case c := <-changed:
		assert.Equal(t, "warn", c.Logging.Level)
		assert.Equal(t, "warn", Get().Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}
