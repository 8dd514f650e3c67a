package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/f1picks/config"
	"github.com/padraicbc/f1picks/db"
	"github.com/padraicbc/f1picks/handlers"
	"github.com/padraicbc/f1picks/ingest"
	"github.com/padraicbc/f1picks/leaderboard"
	applog "github.com/padraicbc/f1picks/logger"
	mw "github.com/padraicbc/f1picks/middleware"
	"github.com/padraicbc/f1picks/store"
)

const shutdownGrace = 15 * time.Second

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	st := store.New(bdb)
	board := leaderboard.New(st, cfg.LeaderboardCacheTTL, logger)
	svc := ingest.NewService(st, ingest.Config{
		AbsenteePenalty: cfg.AbsenteePenalty,
		AbsenteeOffset:  cfg.AbsenteePenaltyOffset,
	}, logger, board)
	h := handlers.New(st, svc, board, cfg.JWTKey(), cfg.IsAdmin, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(mw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))
	h.Routes(e)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errc := make(chan error, 1)
	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", srv.Addr))
		go func() { errc <- srv.ListenAndServe() }()
	} else {
		autoTLS := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(".cache"),
			HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
		}
		srv.Addr = ":443"
		srv.TLSConfig = autoTLS.TLSConfig()
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.Strings("domains", cfg.TLSDomains))
		go func() { errc <- srv.ListenAndServeTLS("", "") }()
	}

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}
}
