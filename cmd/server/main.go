package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/famboard/famboard/internal/ai"
	"github.com/famboard/famboard/internal/api"
	"github.com/famboard/famboard/internal/app"
	"github.com/famboard/famboard/internal/app/maintenance"
	"github.com/famboard/famboard/internal/auth"
	"github.com/famboard/famboard/internal/database"
	"github.com/famboard/famboard/internal/scheduler"
	"github.com/famboard/famboard/internal/services"
	"github.com/famboard/famboard/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := app.ConfigureLogging(cfg.Logging); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.WithModule("server")

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("jwt service: %w", err)
	}

	provider, err := auth.NewLocalProvider(db)
	if err != nil {
		return fmt.Errorf("auth provider: %w", err)
	}

	aiClient, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:          cfg.AI.APIKey,
		BaseURL:         cfg.AI.BaseURL,
		ClassifierModel: cfg.AI.ClassificationModel,
		SummaryModel:    cfg.AI.SummaryModel,
		Temperature:     cfg.AI.Temperature,
	})
	if err != nil {
		return fmt.Errorf("ai client: %w", err)
	}

	users, err := services.NewUserService(db)
	if err != nil {
		return err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return err
	}
	notes, err := services.NewNoteService(db, users, audit)
	if err != nil {
		return err
	}
	families, err := services.NewFamilyService(db, users, audit, scheduler.NewTimerScheduler())
	if err != nil {
		return err
	}
	families.SetInviteTTL(cfg.Invites.TTL)
	classifier, err := services.NewClassifierService(db, users, notes, audit, aiClient)
	if err != nil {
		return err
	}
	summaries, err := services.NewSummaryService(db, users, notes, aiClient)
	if err != nil {
		return err
	}

	cleaner, err := maintenance.NewCleaner(db, audit, maintenance.Config{
		Schedule:       cfg.Maintenance.Schedule,
		AuditRetention: cfg.Maintenance.AuditRetention,
	})
	if err != nil {
		return fmt.Errorf("maintenance: %w", err)
	}
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance: %w", err)
	}
	defer cleaner.Stop()

	router := api.NewRouter(api.Dependencies{
		DB:             db,
		JWTService:     jwtService,
		Provider:       provider,
		Users:          users,
		Families:       families,
		Notes:          notes,
		Classifier:     classifier,
		Summaries:      summaries,
		MetricsEnabled: cfg.Monitoring.MetricsEnabled,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
