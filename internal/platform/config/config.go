package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the vero binaries read from the environment.
type Config struct {
	Addr    string
	DataDir string

	Redis RedisConfig
	Embed EmbedConfig
	Drive DriveConfig

	// IngestWorkers bounds concurrent document processing in the loader.
	IngestWorkers int
}

// RedisConfig configures the optional search result cache. An empty URL
// disables caching entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// EmbedConfig configures the embedding backend. An empty endpoint selects
// the deterministic local embedder so the service runs without external
// dependencies.
type EmbedConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// DriveConfig configures the Google Drive document source.
type DriveConfig struct {
	CredentialsPath string
	FolderID        string
}

// SearchCacheTTL bounds how long cached search results stay fresh.
var SearchCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("VERO_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	dataDir := os.Getenv("VERO_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	embedModel := os.Getenv("VERO_EMBED_MODEL")
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	credsPath := os.Getenv("VERO_DRIVE_CREDENTIALS")
	if credsPath == "" {
		credsPath = "./credentials.json"
	}

	return Config{
		Addr:    addr,
		DataDir: dataDir,
		Redis: RedisConfig{
			URL:          os.Getenv("VERO_REDIS_URL"),
			PoolSize:     envInt("VERO_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VERO_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("VERO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VERO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VERO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Embed: EmbedConfig{
			Endpoint: os.Getenv("VERO_EMBED_ENDPOINT"),
			Model:    embedModel,
			APIKey:   os.Getenv("VERO_EMBED_API_KEY"),
			Timeout:  envDuration("VERO_EMBED_TIMEOUT", 30*time.Second),
		},
		Drive: DriveConfig{
			CredentialsPath: credsPath,
			FolderID:        os.Getenv("VERO_DRIVE_FOLDER_ID"),
		},
		IngestWorkers: envInt("VERO_INGEST_WORKERS", 4),
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
