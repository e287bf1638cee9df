// Package config loads the client configuration, creating a default
// file on first launch.
package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultAPIBaseURL     = "http://localhost:8000/api/v1"
)

// Keymap holds the key bindings for every screen.
type Keymap struct {
	Quit     string `toml:"quit"`
	Add      string `toml:"add"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Left     string `toml:"left"`
	Right    string `toml:"right"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Edit     string `toml:"edit"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
	Grab     string `toml:"grab"`
	Today    string `toml:"today"`
	Prev     string `toml:"prev"`
	Next     string `toml:"next"`
	View     string `toml:"view"`
	Window   string `toml:"window"`
	Filter   string `toml:"filter"`
	Priority string `toml:"priority"`
	Sort     string `toml:"sort"`
	Order    string `toml:"order"`
	Refresh  string `toml:"refresh"`
	Logout   string `toml:"logout"`
}

type Config struct {
	APIBaseURL     string `toml:"api_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	DefaultWindow  string `toml:"default_window"`
	DefaultView    string `toml:"default_view"`
	Keys           Keymap `toml:"keys"`
}

// ResolveConfigPath returns the config file location under
// XDG_CONFIG_HOME/taskflow, falling back to $HOME/.config/taskflow.
func ResolveConfigPath() string {
	dir := "taskflow"
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "taskflow")
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", "taskflow")
	}
	return filepath.Join(dir, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults first if
// no file exists yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		APIBaseURL:     DefaultAPIBaseURL,
		TimeoutSeconds: 10,
		DefaultWindow:  "30d",
		DefaultView:    "month",
		Keys: Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Left:     "h",
			Right:    "l",
			Toggle:   " ",
			Delete:   "d",
			Edit:     "e",
			Confirm:  "enter",
			Cancel:   "esc",
			Grab:     "g",
			Today:    "t",
			Prev:     "[",
			Next:     "]",
			View:     "v",
			Window:   "w",
			Filter:   "f",
			Priority: "p",
			Sort:     "s",
			Order:    "o",
			Refresh:  "r",
			Logout:   "L",
		},
	}
}
