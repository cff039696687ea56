package config

import (
	"errors"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultBackendAddress  = "https://api.d23.ai"
	defaultLogLevel        = "info"
	defaultStorageBackend  = "file"
	defaultHistoryPageSize = 50
	maxHistoryPageSize     = 200
)

type CoreConfig struct {
	Backend  CoreBackendConfig  `toml:"backend"`
	Logging  CoreLoggingConfig  `toml:"logging"`
	Storage  CoreStorageConfig  `toml:"storage"`
	History  CoreHistoryConfig  `toml:"history"`
	Location CoreLocationConfig `toml:"location"`
}

type CoreBackendConfig struct {
	Address string `toml:"address"`
}

type CoreLoggingConfig struct {
	Level string `toml:"level"`
}

type CoreStorageConfig struct {
	Backend string `toml:"backend"`
}

type CoreHistoryConfig struct {
	PageSize int `toml:"page_size"`
}

type CoreLocationConfig struct {
	Latitude  *float64 `toml:"latitude"`
	Longitude *float64 `toml:"longitude"`
}

type UIConfig struct {
	Chat UIChatConfig `toml:"chat"`
}

type UIChatConfig struct {
	Timestamps *bool `toml:"timestamps"`
	Markdown   *bool `toml:"markdown"`
}

func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		Backend: CoreBackendConfig{
			Address: defaultBackendAddress,
		},
		Logging: CoreLoggingConfig{
			Level: defaultLogLevel,
		},
		Storage: CoreStorageConfig{
			Backend: defaultStorageBackend,
		},
		History: CoreHistoryConfig{
			PageSize: defaultHistoryPageSize,
		},
	}
}

func LoadCoreConfig() (CoreConfig, error) {
	path, err := CoreConfigPath()
	if err != nil {
		return CoreConfig{}, err
	}
	return loadCoreConfigFromPath(path)
}

// BackendBaseURL normalizes the configured backend address to a scheme-
// qualified base URL with no trailing slash.
func (c CoreConfig) BackendBaseURL() string {
	addr := strings.TrimSpace(c.Backend.Address)
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultBackendAddress
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "https://" + addr
	}
	return addr
}

func (c CoreConfig) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return defaultLogLevel
	}
	return level
}

// StorageBackend is "file" or "bbolt"; anything else falls back to file.
func (c CoreConfig) StorageBackend() string {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case "bbolt", "bolt":
		return "bbolt"
	default:
		return defaultStorageBackend
	}
}

func (c CoreConfig) HistoryPageSize() int {
	size := c.History.PageSize
	if size <= 0 {
		return defaultHistoryPageSize
	}
	if size > maxHistoryPageSize {
		return maxHistoryPageSize
	}
	return size
}

// LocationCoordinates reports coordinates to share when a location-gated
// send is approved. ok is false until both values are configured.
func (c CoreConfig) LocationCoordinates() (latitude, longitude float64, ok bool) {
	if c.Location.Latitude == nil || c.Location.Longitude == nil {
		return 0, 0, false
	}
	return *c.Location.Latitude, *c.Location.Longitude, true
}

func DefaultUIConfig() UIConfig {
	return UIConfig{}
}

func LoadUIConfig() (UIConfig, error) {
	path, err := UIConfigPath()
	if err != nil {
		return UIConfig{}, err
	}
	return loadUIConfigFromPath(path)
}

func (c UIConfig) ShowTimestamps() bool {
	if c.Chat.Timestamps == nil {
		return true
	}
	return *c.Chat.Timestamps
}

func (c UIConfig) RenderMarkdown() bool {
	if c.Chat.Markdown == nil {
		return true
	}
	return *c.Chat.Markdown
}

func loadCoreConfigFromPath(path string) (CoreConfig, error) {
	cfg := DefaultCoreConfig()
	if err := readTOML(path, &cfg); err != nil {
		return CoreConfig{}, err
	}
	return cfg, nil
}

func loadUIConfigFromPath(path string) (UIConfig, error) {
	cfg := DefaultUIConfig()
	if err := readTOML(path, &cfg); err != nil {
		return UIConfig{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
