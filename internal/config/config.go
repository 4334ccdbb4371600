// internal/config/config.go
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultTheme        = "light"
	DefaultPollInterval = 5
	DefaultExportDir    = "C:/Datacaixa/Integracao/Pedidos"
)

// DefaultActiveStatuses – statusy zamówień brane pod uwagę przy synchronizacji.
var DefaultActiveStatuses = []string{"recebido", "em_andamento"}

// Główny config aplikacji
type Config struct {
	Theme               string   `json:"theme"` // light | dark
	PollIntervalSeconds int      `json:"poll_interval_seconds"`
	AutoSync            bool     `json:"auto_sync"`
	PushFeedURL         string   `json:"push_feed_url"` // ws:// lub wss://, pusty = wyłączone
	NotifyNative        bool     `json:"notify_native"`
	MarkExportedInDB    bool     `json:"mark_exported_in_db"`
	DatabaseURL         string   `json:"database_url"` // postgres:// albo mysql://
	ExportDir           string   `json:"export_dir"`
	ActiveStatuses      []string `json:"active_statuses"`
}

func defaultConfig() *Config {
	return &Config{
		Theme:               DefaultTheme,
		PollIntervalSeconds: DefaultPollInterval,
		AutoSync:            false,
		PushFeedURL:         "",
		NotifyNative:        true,
		MarkExportedInDB:    true,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ExportDir:           DefaultExportDir,
		ActiveStatuses:      append([]string(nil), DefaultActiveStatuses...),
	}
}

func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}
	defer f.Close()

	cfg := defaultConfig()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	cfg.normalize()
	return cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// normalize przywraca wartości domyślne dla pól spoza dozwolonego zakresu.
func (c *Config) normalize() {
	if c.Theme != "light" && c.Theme != "dark" {
		c.Theme = DefaultTheme
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = DefaultPollInterval
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
	if len(c.ActiveStatuses) == 0 {
		c.ActiveStatuses = append([]string(nil), DefaultActiveStatuses...)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}
