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

	"github.com/labstack/echo/v4"

	httpctx "github.com/membergate/membergate/internal/api/http/context"
	"github.com/membergate/membergate/internal/api/http/handler"
	"github.com/membergate/membergate/internal/api/http/router"
	httpServer "github.com/membergate/membergate/internal/api/http/server"
	"github.com/membergate/membergate/internal/captcha"
	"github.com/membergate/membergate/internal/config"
	"github.com/membergate/membergate/internal/identity/dev"
	"github.com/membergate/membergate/internal/identity/remote"
	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
	"github.com/membergate/membergate/internal/render"
	"github.com/membergate/membergate/internal/repository/postgres"
	"github.com/membergate/membergate/internal/repository/static"
	"github.com/membergate/membergate/internal/server"
	"github.com/membergate/membergate/internal/service"
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

	identityService, err := makeIdentityService(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize identity service", "error", err)
	}

	settingsStore, cleanup, err := makeSettingsStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize settings store", "error", err)
	}
	defer cleanup()

	policy, err := service.NewPolicy(cfg.Site.BaseURL, cfg.Site.AdminURL)
	if err != nil {
		logger.Fatal("failed to build redirect policy", "error", err)
	}

	verifier := captcha.NewVerifier(cfg.Captcha.VerifyURL, time.Duration(cfg.Captcha.TimeoutSeconds)*time.Second, logger)
	flow := service.NewFlow(identityService, settingsStore, verifier, policy, cfg.Site.BaseURL, logger)

	renderer, err := render.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse page templates", "error", err)
	}

	ctxMgr := httpctx.NewManager()
	authHandler := handler.NewAuth(flow, policy, settingsStore, renderer, ctxMgr, handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.New(authHandler, identityService, ctxMgr, cfg.Session.CookieName, logger).Register(e)

	srv := httpServer.NewHTTPServer(e, fmt.Sprintf(":%s", cfg.HTTP.Port))

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
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
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
	logger.Info("shutdown complete")
}

func makeIdentityService(cfg *config.Config, logger *logger.Logger) (model.IdentityService, error) {
	switch cfg.Identity.Mode {
	case "remote":
		timeout := time.Duration(cfg.Identity.TimeoutSeconds) * time.Second
		return remote.NewClient(cfg.Identity.Endpoint, timeout, logger), nil
	case "dev":
		svc := dev.NewService(cfg.Identity.DevSecret, logger)
		if err := svc.Seed("admin@localhost", "admin", model.RoleAdmin); err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Identity.Mode)
	}
}

func makeSettingsStore(ctx context.Context, cfg *config.Config) (model.SettingsStore, func(), error) {
	if cfg.Database.DSN == "" {
		store := static.NewSettingsStore(model.Settings{
			AdminRedirect:      cfg.Database.AdminRedirect,
			RegistrationOpen:   cfg.Database.RegistrationOpen,
			CaptchaSiteKey:     cfg.Captcha.SiteKey,
			CaptchaSecretKey:   cfg.Captcha.SecretKey,
			NewUserDefaultRole: model.Role(cfg.Database.DefaultRole),
		})
		return store, func() {}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	return postgres.NewSettingsRepository(db), func() { _ = db.Close() }, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
