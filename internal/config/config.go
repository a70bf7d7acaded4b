package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	WebPort string
	APIURL  string

	DataDir     string
	DownloadDir string

	StoreDialect string
	StoreDSN     string
	LogLevel     string

	SendRate  float64
	SendBurst int
}

func Load() (*Config, error) {
	// .env is optional, the environment may already be set
	_ = godotenv.Load()

	cfg := &Config{
		Port:         os.Getenv("PORT"),
		WebPort:      os.Getenv("WEB_PORT"),
		APIURL:       os.Getenv("API_URL"),
		DataDir:      os.Getenv("DATA_DIR"),
		DownloadDir:  os.Getenv("DOWNLOAD_DIR"),
		StoreDialect: os.Getenv("WA_STORE_DIALECT"),
		StoreDSN:     os.Getenv("WA_STORE_DSN"),
		LogLevel:     strings.ToUpper(os.Getenv("WA_LOG_LEVEL")),
		SendRate:     1,
		SendBurst:    5,
	}

	if cfg.Port == "" {
		cfg.Port = "3001"
	}
	if cfg.WebPort == "" {
		cfg.WebPort = "8080"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = fmt.Sprintf("http://localhost:%s/mcp/tools", cfg.Port)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(cfg.DataDir, "downloads")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}

	switch cfg.StoreDialect {
	case "":
		cfg.StoreDialect = "sqlite3"
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("WA_STORE_DIALECT must be sqlite3 or postgres, got %q", cfg.StoreDialect)
	}
	if cfg.StoreDSN == "" {
		if cfg.StoreDialect == "postgres" {
			return nil, fmt.Errorf("required env var WA_STORE_DSN is not set")
		}
		cfg.StoreDSN = fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "whatsapp.db"))
	}

	if v := os.Getenv("WA_SEND_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("WA_SEND_RATE must be a positive number, got %q", v)
		}
		cfg.SendRate = rate
	}
	if v := os.Getenv("WA_SEND_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst < 1 {
			return nil, fmt.Errorf("WA_SEND_BURST must be a positive integer, got %q", v)
		}
		cfg.SendBurst = burst
	}

	return cfg, nil
}

// HistoryPath is the bbolt file holding chats and messages seen by the server.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
