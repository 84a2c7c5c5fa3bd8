package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	apicontext "github.com/dtroode/numbook-server/internal/api/http/context"
	"github.com/dtroode/numbook-server/internal/api/http/router"
	httpServer "github.com/dtroode/numbook-server/internal/api/http/server"
	"github.com/dtroode/numbook-server/internal/clock"
	"github.com/dtroode/numbook-server/internal/config"
	"github.com/dtroode/numbook-server/internal/credential"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
	"github.com/dtroode/numbook-server/internal/repository/postgres"
	"github.com/dtroode/numbook-server/internal/server"
	"github.com/dtroode/numbook-server/internal/service"
	minioStorage "github.com/dtroode/numbook-server/internal/storage/minio"
	s3Storage "github.com/dtroode/numbook-server/internal/storage/s3"
	"github.com/dtroode/numbook-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	for _, name := range cfg.InsecureDefaults() {
		logger.Warn("using built-in default, set it before exposing the server", "setting", name)
	}

	clk := clock.Real()

	backupStorage, err := newBackupStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize backup storage", "error", err)
	}
	backup := service.NewBackup(backupStorage, cfg.Backup.Prefix, cfg.Backup.Timeout, clk, logger)

	userStore, err := credential.New(credential.Options{
		Path:              cfg.Auth.CredentialsPath,
		Passphrase:        cfg.Auth.EncryptionKey,
		BootstrapUsername: cfg.Auth.BootstrapUsername,
		BootstrapPassword: cfg.Auth.BootstrapPassword,
		Clock:             clk,
		Notifier:          backup,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create credential store", "error", err)
	}
	// Fail fast on a wrong key or a tampered file instead of on first login.
	if _, err := userStore.Load(ctx); err != nil {
		logger.Fatal("failed to load credential store", "error", err, "path", cfg.Auth.CredentialsPath)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	numberRepo := postgres.NewNumberRepository(db)
	tokenManager := token.NewJWT(cfg.Auth.JWTSecret, clk)

	tokenService := service.NewTokenService(tokenManager, userStore, logger)
	authService := service.NewAuth(userStore, tokenService, logger)
	numberService := service.NewNumber(numberRepo, userStore, backup, clk, logger)
	backup.Register(userStore, numberService)

	ctxMgr := apicontext.NewManager()
	app := router.New(authService, numberService, backup, ctxMgr, logger).Register()
	srv := httpServer.NewHTTPServer(app, cfg.HTTP.Address)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	backup.Wait()
	logger.Info("shutdown complete")
}

func newBackupStorage(ctx context.Context, cfg *config.Config) (model.Storage, error) {
	switch cfg.Backup.Driver {
	case config.BackupDriverMinio:
		return minioStorage.New(ctx, minioStorage.Config{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKey,
			SecretAccessKey: cfg.Minio.SecretKey,
			Bucket:          cfg.Minio.Bucket,
			UseSSL:          cfg.Minio.UseSSL,
		})
	case config.BackupDriverS3:
		return s3Storage.New(ctx, s3Storage.Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	default:
		return nil, nil
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
