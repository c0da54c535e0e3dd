package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/patrickspencer/timetable/pkg/timetable"
)

// Config is the top-level daemon configuration parsed from timetabled.yaml.
type Config struct {
	Listen          string `yaml:"listen"`
	DataDir         string `yaml:"data_dir"`
	SchedulesDir    string `yaml:"schedules_dir"`
	LogLevel        string `yaml:"log_level"`
	DefaultTimeZone string `yaml:"default_timezone"`
}

func applyDefaults(c *Config) {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	c.DataDir = expandPath(c.DataDir)
	if c.SchedulesDir == "" {
		c.SchedulesDir = defaultSchedulesDir()
	}
	c.SchedulesDir = expandPath(c.SchedulesDir)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DefaultTimeZone == "" {
		c.DefaultTimeZone = timetable.DefaultTimeZone
	}
}

func defaultSchedulesDir() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "./schedules"
	}
	return filepath.Join(home, ".config", "timetabled", "schedules")
}

func expandPath(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}

	v = os.ExpandEnv(v)

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v
	}

	if v == "~" {
		return home
	}
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	if strings.HasPrefix(v, "~\\") {
		return filepath.Join(home, v[2:])
	}
	return v
}

// LoadConfig reads a YAML configuration file from path and returns
// a Config with defaults applied for any unset fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}
