package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"bookcatalog/internal/app"
	"bookcatalog/internal/config"
	"bookcatalog/internal/server"
	"bookcatalog/internal/storage"
	"bookcatalog/internal/store"
	"bookcatalog/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	var blobs storage.BlobStore
	switch cfg.StorageBackend {
	case "s3":
		blobs, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		blobs, err = storage.NewFileStore(cfg.BooksDir, cfg.CoversDir)
	}
	if err != nil {
		log.Fatalf("failed to init blob store: %v", err)
	}

	catalog := app.New(dataStore, blobs)
	httpServer := server.New(server.Config{
		App:            catalog,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("catalog server listening", "addr", addr, "storage", cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
