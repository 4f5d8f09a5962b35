package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Training TrainingConfig `mapstructure:"training"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GameConfig holds level and entity rules
type GameConfig struct {
	TemplateFile    string `mapstructure:"template_file"` // empty uses the built-in 13x15 arena
	SoftWalls       int    `mapstructure:"soft_walls"`
	StartRow        int    `mapstructure:"start_row"`
	StartCol        int    `mapstructure:"start_col"`
	BombTimerMs     int    `mapstructure:"bomb_timer_ms"`
	ExplosionMs     int    `mapstructure:"explosion_ms"`
	BlastSize       int    `mapstructure:"blast_size"`
	BombAllowance   int    `mapstructure:"bomb_allowance"`
	DeathGraceMs    int    `mapstructure:"death_grace_ms"`
	MaxEpisodeSteps int    `mapstructure:"max_episode_steps"`
}

func (g GameConfig) BombTimer() time.Duration { return time.Duration(g.BombTimerMs) * time.Millisecond }
func (g GameConfig) Explosion() time.Duration { return time.Duration(g.ExplosionMs) * time.Millisecond }
func (g GameConfig) DeathGrace() time.Duration {
	return time.Duration(g.DeathGraceMs) * time.Millisecond
}

// AgentConfig holds learner hyperparameters and checkpointing
type AgentConfig struct {
	HiddenUnits     []int   `mapstructure:"hidden_units"`
	Activation      string  `mapstructure:"activation"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	MemorySize      int     `mapstructure:"memory_size"`
	BatchSize       int     `mapstructure:"batch_size"`
	Gamma           float64 `mapstructure:"gamma"`
	EpsilonStart    float64 `mapstructure:"epsilon_start"`
	EpsilonMin      float64 `mapstructure:"epsilon_min"`
	EpsilonDecay    float64 `mapstructure:"epsilon_decay"`
	CheckpointPath  string  `mapstructure:"checkpoint_path"`
	CheckpointEvery int     `mapstructure:"checkpoint_every"`
}

// RewardsConfig holds per-step reward values
type RewardsConfig struct {
	Alive float64 `mapstructure:"alive"`
	Death float64 `mapstructure:"death"`
	Win   float64 `mapstructure:"win"`
}

// TrainingConfig controls the headless trainer
type TrainingConfig struct {
	TickMs        int `mapstructure:"tick_ms"`
	MaxEpisodes   int `mapstructure:"max_episodes"` // 0 runs until interrupted
	MaxTicks      int `mapstructure:"max_ticks"`    // 0 runs until interrupted
	ProgressEvery int `mapstructure:"progress_every"`
	MonitorSec    int `mapstructure:"monitor_interval_s"` // 0 disables runtime sampling
}

func (t TrainingConfig) Tick() time.Duration { return time.Duration(t.TickMs) * time.Millisecond }

// ServerConfig holds the optional gRPC health endpoint
type ServerConfig struct {
	Health HealthServerConfig `mapstructure:"health"`
}

// HealthServerConfig holds gRPC health server configuration
type HealthServerConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// StorageConfig holds the episode database location
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// UIConfig holds window and terminal settings
type UIConfig struct {
	Window WindowConfig    `mapstructure:"window"`
	TPS    int             `mapstructure:"tps"`
	Colors ColorsConfig    `mapstructure:"colors"`
	Watch  WatchViewConfig `mapstructure:"watch"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	TileSize int    `mapstructure:"tile_size"`
	Title    string `mapstructure:"title"`
}

// ColorsConfig holds RGB colors for the window renderer
type ColorsConfig struct {
	Background [3]int `mapstructure:"background"`
	Outline    [3]int `mapstructure:"outline"`
	Wall       [3]int `mapstructure:"wall"`
	SoftWall   [3]int `mapstructure:"soft_wall"`
	Bomb       [3]int `mapstructure:"bomb"`
	Explosion  [3]int `mapstructure:"explosion"`
	Player     [3]int `mapstructure:"player"`
}

// WatchViewConfig holds terminal viewer settings
type WatchViewConfig struct {
	FrameMs       int `mapstructure:"frame_ms"`
	StepsPerFrame int `mapstructure:"steps_per_frame"`
	MaxSteps      int `mapstructure:"max_steps_per_frame"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // console or json
	EventLevel  string `mapstructure:"event_level"`
	LogEvents   bool   `mapstructure:"log_events"`
	Development bool   `mapstructure:"development"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
	mu  sync.RWMutex
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.template_file", "")
	v.SetDefault("game.soft_walls", 60)
	v.SetDefault("game.start_row", 1)
	v.SetDefault("game.start_col", 1)
	v.SetDefault("game.bomb_timer_ms", 3000)
	v.SetDefault("game.explosion_ms", 300)
	v.SetDefault("game.blast_size", 3)
	v.SetDefault("game.bomb_allowance", 1)
	v.SetDefault("game.death_grace_ms", 350)
	v.SetDefault("game.max_episode_steps", 0)

	// Agent defaults
	v.SetDefault("agent.hidden_units", []int{24, 24})
	v.SetDefault("agent.activation", "tanh")
	v.SetDefault("agent.learning_rate", 0.01)
	v.SetDefault("agent.memory_size", 2000)
	v.SetDefault("agent.batch_size", 32)
	v.SetDefault("agent.gamma", 0.95)
	v.SetDefault("agent.epsilon_start", 1.0)
	v.SetDefault("agent.epsilon_min", 0.01)
	v.SetDefault("agent.epsilon_decay", 0.995)
	v.SetDefault("agent.checkpoint_path", "")
	v.SetDefault("agent.checkpoint_every", 50)

	// Reward defaults
	v.SetDefault("rewards.alive", 1.0)
	v.SetDefault("rewards.death", -10.0)
	v.SetDefault("rewards.win", 0.0)

	// Training defaults
	v.SetDefault("training.tick_ms", 16)
	v.SetDefault("training.max_episodes", 0)
	v.SetDefault("training.max_ticks", 0)
	v.SetDefault("training.progress_every", 10)
	v.SetDefault("training.monitor_interval_s", 30)

	// Server defaults
	v.SetDefault("server.health.enabled", false)
	v.SetDefault("server.health.host", "0.0.0.0")
	v.SetDefault("server.health.port", 50051)
	v.SetDefault("server.health.enable_reflection", true)
	v.SetDefault("server.health.graceful_shutdown_delay", 5)

	// Storage defaults
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.path", "~/.bomberman-rl/episodes.db")

	// UI defaults
	v.SetDefault("ui.window.tile_size", 40)
	v.SetDefault("ui.window.title", "Bomberman RL")
	v.SetDefault("ui.tps", 60)
	v.SetDefault("ui.colors.background", []int{20, 20, 24})
	v.SetDefault("ui.colors.outline", []int{60, 60, 70})
	v.SetDefault("ui.colors.wall", []int{110, 110, 120})
	v.SetDefault("ui.colors.soft_wall", []int{160, 110, 60})
	v.SetDefault("ui.colors.bomb", []int{30, 30, 30})
	v.SetDefault("ui.colors.explosion", []int{250, 180, 40})
	v.SetDefault("ui.colors.player", []int{60, 160, 230})
	v.SetDefault("ui.watch.frame_ms", 50)
	v.SetDefault("ui.watch.steps_per_frame", 3)
	v.SetDefault("ui.watch.max_steps_per_frame", 200)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.event_level", "debug")
	v.SetDefault("logging.log_events", false)
	v.SetDefault("logging.development", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()

	// Set defaults before loading any config
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("$HOME/.bomberman-rl")
	}

	nv.SetEnvPrefix("BRL")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		// A missing file falls back to defaults; anything else is an error
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := nv.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	cfg = c
	v = nv
	mu.Unlock()
	return nil
}

// Get returns a copy of the global config, initializing defaults on first use
func Get() Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
		mu.RLock()
		c = cfg
		mu.RUnlock()
	}
	return *c
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml from the directory of the
// loaded config file (or the working directory) over the current values
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	if v == nil {
		return fmt.Errorf("config not initialized")
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if used := v.ConfigFileUsed(); used != "" {
		envFile = filepath.Join(filepath.Dir(used), envFile)
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return nil
}

// Set allows runtime config updates. The change is rejected if the result
// does not validate.
func Set(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()
	if v == nil {
		return fmt.Errorf("config not initialized")
	}

	prev := v.Get(key)
	v.Set(key, value)
	next := &Config{}
	err := v.Unmarshal(next)
	if err != nil {
		err = fmt.Errorf("unable to decode config into struct: %w", err)
	} else if err = Validate(next); err != nil {
		err = fmt.Errorf("config validation failed: %w", err)
	}
	if err != nil {
		v.Set(key, prev)
		return err
	}
	cfg = next
	return nil
}

// GetString gets a string value from config
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return GetViper().GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange receives the
// new config only when it validates; invalid edits are reported through
// onError and the previous config stays active.
func WatchConfig(onChange func(Config), onError func(error)) {
	wv := GetViper()
	wv.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := wv.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}

		mu.Lock()
		cfg = next
		mu.Unlock()
		if onChange != nil {
			onChange(*next)
		}
	})
	wv.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Game rules
	if c.Game.SoftWalls < 1 {
		return fmt.Errorf("game.soft_walls must be at least 1")
	}
	if c.Game.StartRow < 0 || c.Game.StartCol < 0 {
		return fmt.Errorf("game.start_row and game.start_col must be non-negative")
	}
	if c.Game.BombTimerMs <= 0 {
		return fmt.Errorf("game.bomb_timer_ms must be positive")
	}
	if c.Game.ExplosionMs <= 0 {
		return fmt.Errorf("game.explosion_ms must be positive")
	}
	if c.Game.BlastSize < 0 {
		return fmt.Errorf("game.blast_size must be non-negative")
	}
	if c.Game.BombAllowance < 0 {
		return fmt.Errorf("game.bomb_allowance must be non-negative")
	}
	if c.Game.DeathGraceMs < 0 {
		return fmt.Errorf("game.death_grace_ms must be non-negative")
	}
	if c.Game.MaxEpisodeSteps < 0 {
		return fmt.Errorf("game.max_episode_steps must be non-negative")
	}

	// Agent hyperparameters
	if len(c.Agent.HiddenUnits) == 0 {
		return fmt.Errorf("agent.hidden_units must list at least one layer")
	}
	for i, n := range c.Agent.HiddenUnits {
		if n <= 0 {
			return fmt.Errorf("agent.hidden_units[%d] must be positive", i)
		}
	}
	switch c.Agent.Activation {
	case "tanh", "relu":
	default:
		return fmt.Errorf("agent.activation must be tanh or relu, got %q", c.Agent.Activation)
	}
	if c.Agent.LearningRate <= 0 {
		return fmt.Errorf("agent.learning_rate must be positive")
	}
	if c.Agent.BatchSize <= 0 {
		return fmt.Errorf("agent.batch_size must be positive")
	}
	if c.Agent.MemorySize < c.Agent.BatchSize {
		return fmt.Errorf("agent.memory_size must be at least agent.batch_size")
	}
	if c.Agent.Gamma < 0 || c.Agent.Gamma > 1 {
		return fmt.Errorf("agent.gamma must be between 0 and 1")
	}
	if c.Agent.EpsilonStart < 0 || c.Agent.EpsilonStart > 1 {
		return fmt.Errorf("agent.epsilon_start must be between 0 and 1")
	}
	if c.Agent.EpsilonMin < 0 || c.Agent.EpsilonMin > c.Agent.EpsilonStart {
		return fmt.Errorf("agent.epsilon_min must be between 0 and agent.epsilon_start")
	}
	if c.Agent.EpsilonDecay <= 0 || c.Agent.EpsilonDecay > 1 {
		return fmt.Errorf("agent.epsilon_decay must be in (0, 1]")
	}
	if c.Agent.CheckpointEvery < 0 {
		return fmt.Errorf("agent.checkpoint_every must be non-negative")
	}

	// Training loop
	if c.Training.TickMs <= 0 {
		return fmt.Errorf("training.tick_ms must be positive")
	}
	if c.Training.MaxEpisodes < 0 || c.Training.MaxTicks < 0 {
		return fmt.Errorf("training limits must be non-negative")
	}
	if c.Training.ProgressEvery < 0 {
		return fmt.Errorf("training.progress_every must be non-negative")
	}
	if c.Training.MonitorSec < 0 {
		return fmt.Errorf("training.monitor_interval_s must be non-negative")
	}

	// Server
	if c.Server.Health.Port <= 0 || c.Server.Health.Port > 65535 {
		return fmt.Errorf("server.health.port must be between 1 and 65535")
	}
	if c.Server.Health.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.health.graceful_shutdown_delay must be non-negative")
	}

	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when storage is enabled")
	}

	// UI
	if c.UI.Window.TileSize <= 0 {
		return fmt.Errorf("ui.window.tile_size must be positive")
	}
	if c.UI.TPS <= 0 {
		return fmt.Errorf("ui.tps must be positive")
	}
	if c.UI.Watch.FrameMs <= 0 {
		return fmt.Errorf("ui.watch.frame_ms must be positive")
	}
	if c.UI.Watch.StepsPerFrame <= 0 || c.UI.Watch.StepsPerFrame > c.UI.Watch.MaxSteps {
		return fmt.Errorf("ui.watch.steps_per_frame must be between 1 and ui.watch.max_steps_per_frame")
	}

	validateRGB := func(rgb [3]int, name string) error {
		for i, v := range rgb {
			if v < 0 || v > 255 {
				return fmt.Errorf("%s[%d] must be between 0 and 255", name, i)
			}
		}
		return nil
	}
	colors := map[string][3]int{
		"ui.colors.background": c.UI.Colors.Background,
		"ui.colors.outline":    c.UI.Colors.Outline,
		"ui.colors.wall":       c.UI.Colors.Wall,
		"ui.colors.soft_wall":  c.UI.Colors.SoftWall,
		"ui.colors.bomb":       c.UI.Colors.Bomb,
		"ui.colors.explosion":  c.UI.Colors.Explosion,
		"ui.colors.player":     c.UI.Colors.Player,
	}
	for name, rgb := range colors {
		if err := validateRGB(rgb, name); err != nil {
			return err
		}
	}

	// Logging
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	return nil
}
