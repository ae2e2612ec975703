package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/i18n"
)

// Config carries the connection parameters and UI defaults. Everything can
// be overridden by flags; the resolved config is written back on start.
type Config struct {
	Driver     string `json:"driver"`
	DSN        string `json:"dsn"`
	WebEnabled bool   `json:"web_enabled"`
	WebPort    int    `json:"web_port"`
	Language   string `json:"language"`
}

func Default() Config {
	return Config{Driver: db.DriverSQLite, WebPort: 8080, Language: i18n.English}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "todolist", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if config.Driver == "" {
		config.Driver = db.DriverSQLite
	}
	if config.Language == "" {
		config.Language = i18n.English
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
