package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wolfstreet/internal/auth"
	"wolfstreet/internal/config"
	apphttp "wolfstreet/internal/http"
	"wolfstreet/internal/repository"
	"wolfstreet/internal/repository/memory"
	"wolfstreet/internal/repository/sqlite"
	"wolfstreet/internal/service"
	"wolfstreet/internal/storage"
	"wolfstreet/internal/submit"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var kv repository.KVStore
	if strings.TrimSpace(cfg.Database.Path) == "" {
		logger.Warn("database path not set, state is kept in memory only")
		kv = memory.NewKVRepository()
	} else {
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Fatalf("open database: %v", err)
		}
		defer db.Close()
		kv = sqlite.NewKVRepository(db)
	}

	store := repository.NewStore(kv)
	if err := store.Init(ctx); err != nil {
		logger.Fatalf("init store: %v", err)
	}

	resumes, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	var tokens *auth.Issuer
	if secret := strings.TrimSpace(cfg.Auth.JWTSecret); secret != "" {
		tokens = auth.NewIssuer(secret, cfg.TokenTTL())
	} else {
		logger.Warn("auth jwt secret not set, session tokens are disabled")
	}
	if !cfg.Auth.VerifyPasswords {
		logger.Warn("password verification disabled, login matches by email only")
	}

	submits := submit.NewManager(submit.Config{
		Delay:   cfg.SubmitDelay(),
		Timeout: cfg.SubmitTimeout(),
		Logger:  logger,
	})
	if err := submits.Start(ctx); err != nil {
		logger.Fatalf("start submission manager: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Deps{
		Accounts:   service.NewAccountService(store, resumes, cfg.Auth.VerifyPasswords),
		Vacancies:  service.NewVacancyService(store),
		Groups:     service.NewGroupService(store),
		Dashboards: service.NewDashboardService(store),
		Submits:    submits,
		Tokens:     tokens,
		Logger:     logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	submits.Shutdown()

	logger.Info("bye")
}

// buildStorage returns nil when no bucket is configured; résumés are then
// recorded by file name only.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not set, resume files are not uploaded")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix), nil
}
