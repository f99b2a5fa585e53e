package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/guidoenr/ribbonviz/internal/style"
)

type AudioConfig struct {
	Device     string `yaml:"device"`
	BufferSize int    `yaml:"buffer_size"`
	Disabled   bool   `yaml:"disabled"`
}

type DisplayConfig struct {
	Backend    string  `yaml:"backend"`
	FPS        float64 `yaml:"fps"`
	ShowStatus bool    `yaml:"show_status"`
	Color      bool    `yaml:"color"`
	Palette    string  `yaml:"palette"`
}

type WebConfig struct {
	Port     int     `yaml:"port"`
	FrameFPS float64 `yaml:"frame_fps"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Debug      bool   `yaml:"debug"`
}

// Config is the on-disk configuration. Command line flags override it.
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Display DisplayConfig `yaml:"display"`
	Web     WebConfig     `yaml:"web"`
	Log     LogConfig     `yaml:"log"`
	Style   style.Config  `yaml:"style"`
}

func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			BufferSize: 32768,
		},
		Display: DisplayConfig{
			Backend:    "terminal",
			FPS:        60,
			ShowStatus: true,
			Color:      true,
			Palette:    "default",
		},
		Web: WebConfig{
			Port:     8080,
			FrameFPS: 15,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Style: style.Defaults(),
	}
}

// LoadFromFile overlays the YAML file at path onto c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// TryLoadDefault loads the first config file found in the usual places and
// returns its path, or "" when none exists. A file that exists but cannot be
// read or parsed is an error.
func (c *Config) TryLoadDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	paths := []string{
		filepath.Join(home, ".config", "ribbonviz", "config.yaml"),
		filepath.Join(home, ".config", "ribbonviz", "config.yml"),
		filepath.Join(home, ".ribbonviz.yaml"),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := c.LoadFromFile(p); err != nil {
				return p, err
			}
			return p, nil
		}
	}
	return "", nil
}
