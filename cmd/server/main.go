package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intrpom/Kurzy-sub001/config"
	"github.com/intrpom/Kurzy-sub001/internal/database"
	"github.com/intrpom/Kurzy-sub001/internal/grpc"
	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/internal/login"
	"github.com/intrpom/Kurzy-sub001/internal/route"
	"github.com/intrpom/Kurzy-sub001/internal/token"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
	"github.com/intrpom/Kurzy-sub001/packages/email"
)

const shutdownTimeout = 10 * time.Second

// @title Courses auth and progress API
// @version 1.0
// @description Passwordless sign-in, session cookies and course progress.
// @BasePath /api/v1
func main() {
	// 1. config and logging
	config.MustLoad("config.yaml")
	conf := config.Conf
	logger := logging.Setup(conf.Log)
	gin.SetMode(conf.Server.Mode)

	if err := run(conf, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(conf *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. storage
	if err := database.InitDatabase(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close()

	codec, err := authsdk.NewCodec(conf.Session.Secret, authsdk.WithTTL(conf.Session.TTL))
	if err != nil {
		return fmt.Errorf("session codec: %w", err)
	}

	// 3. routes
	r := route.SetupRouter(route.Dependencies{
		Config: conf,
		DB:     database.PostgresDB,
		Redis:  database.RedisDB.Client,
		Codec:  codec,
		Mailer: newMailer(conf, logger),
		Logger: logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port),
		Handler:      r,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)

	// 4. background work
	go func() {
		_ = token.NewSweeper(token.NewTokenRepository(database.PostgresDB), time.Hour).Run(ctx)
	}()

	var grpcServer *grpc.Server
	if conf.GRPC.Port > 0 {
		grpcServer, err = grpc.NewServer(conf.GRPC.Port)
		if err != nil {
			return err
		}
		grpcServer.SetServing(true)
		go func() {
			logger.Info("grpc health server listening", "addr", grpcServer.GetAddr())
			if err := grpcServer.Start(); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "environment", conf.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if grpcServer != nil {
		grpcServer.Stop()
	}
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("http shutdown", "error", shutdownErr)
	}
	return err
}

func newMailer(conf *config.AppConfig, logger *slog.Logger) login.Mailer {
	if conf.Smtp.Enabled() {
		return login.NewSMTPMailer(email.NewClient(&conf.Smtp), conf.Mail.From, conf.Mail.AppName)
	}
	logger.Warn("smtp not configured, magic links are only logged")
	return login.NewLogMailer(logging.For("mailer"))
}
