package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game    GameConfig    `toml:"game"`
	Data    DataConfig    `toml:"data"`
	Logging LoggingConfig `toml:"logging"`
}

type GameConfig struct {
	TickRate       time.Duration `toml:"tick_rate"`
	FrameBudget    int           `toml:"frame_budget"` // frames before the demo loop stops itself; 0 = run until signalled
	ViewportWidth  int32         `toml:"viewport_width"`
	ViewportHeight int32         `toml:"viewport_height"`
}

type DataConfig struct {
	MapPath     string `toml:"map_path"`
	TilesetPath string `toml:"tileset_path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			TickRate:       16 * time.Millisecond, // ~60 fps
			FrameBudget:    0,
			ViewportWidth:  320,
			ViewportHeight: 240,
		},
		Data: DataConfig{
			MapPath:     "data/maps/overworld.yaml",
			TilesetPath: "data/tilesets/overworld.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
