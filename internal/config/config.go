package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port           string `yaml:"port"`
	LogLevel       string `yaml:"logLevel"`
	DatabaseURL    string `yaml:"databaseURL"`
	StorageBackend string `yaml:"storageBackend"`
	BooksDir       string `yaml:"booksDir"`
	CoversDir      string `yaml:"coversDir"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// fine; defaults plus environment variables are enough to run.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	// Override with environment variables.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CATALOG_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CATALOG_STORAGE_BACKEND"); v != "" {
		cfg.StorageBackend = v
	}
	if v := os.Getenv("CATALOG_BOOKS_DIR"); v != "" {
		cfg.BooksDir = v
	}
	if v := os.Getenv("CATALOG_COVERS_DIR"); v != "" {
		cfg.CoversDir = v
	}
	if v := os.Getenv("CATALOG_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = "fs"
	}
	if cfg.BooksDir == "" {
		cfg.BooksDir = "./books"
	}
	if cfg.CoversDir == "" {
		cfg.CoversDir = "./covers"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 * 1024 * 1024
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	switch cfg.StorageBackend {
	case "fs":
	case "s3":
		if cfg.MinioEndpoint == "" {
			return errors.New("config: minioEndpoint is required for the s3 backend")
		}
		if cfg.MinioAccessKey == "" {
			return errors.New("config: minioAccessKey is required for the s3 backend")
		}
		if cfg.MinioSecretKey == "" {
			return errors.New("config: minioSecretKey is required for the s3 backend")
		}
		if cfg.MinioBucket == "" {
			return errors.New("config: minioBucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("config: unknown storageBackend %q (want fs or s3)", cfg.StorageBackend)
	}
	return nil
}
