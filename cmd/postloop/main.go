package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/postloop/postloop/internal/ai"
	"github.com/postloop/postloop/internal/config"
	"github.com/postloop/postloop/internal/db"
	"github.com/postloop/postloop/internal/filestore"
	"github.com/postloop/postloop/internal/handler"
	"github.com/postloop/postloop/internal/job"
	"github.com/postloop/postloop/internal/middleware"
	"github.com/postloop/postloop/internal/repo"
	"github.com/postloop/postloop/internal/schedule"
	"github.com/postloop/postloop/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "postloop",
		Short: "postloop calendar backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run postloop server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	entryRepo := repo.NewEntryRepo(conn)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	enhancer := ai.NewEnhancer(aiProvider, cfg.AI.Model, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	importService := service.NewImportService(entryRepo, enhancer, service.NoopScheduler{})
	exportService := service.NewExportService(entryRepo, store, nil, nil)
	templateService := service.NewTemplateService()
	calendarService := service.NewCalendarService(entryRepo)

	rateWindow := time.Duration(cfg.RateLimit.WindowMs) * time.Millisecond
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}

	deps := handler.RouterDeps{
		Calendar:        handler.NewCalendarHandler(importService, exportService, calendarService),
		Templates:       handler.NewTemplateHandler(templateService),
		Files:           handler.NewFileHandler(store),
		JWTSecret:       []byte(cfg.JWTSecret),
		RateLimitWindow: rateWindow,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewPublishDueJob(calendarService), cfg.Schedule.PublishSpec); err != nil {
		return fmt.Errorf("schedule publish job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
