package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DamasoSilva/Platzgo-sub000/internal/config"
	dbpkg "github.com/DamasoSilva/Platzgo-sub000/internal/db"
	"github.com/DamasoSilva/Platzgo-sub000/internal/logging"
	"github.com/DamasoSilva/Platzgo-sub000/internal/obs"
	"github.com/DamasoSilva/Platzgo-sub000/internal/routes"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracerConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: "platzgo-api",
		Endpoint:    cfg.OtelEndpoint,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init tracer")
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cleanup, err := routes.RegisterRoutes(r, db, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire routes")
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}

	go func() {
		log.Infof("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	// drena os efeitos pendentes antes de fechar o banco
	cleanup()
	if err := shutdownTracer(ctx); err != nil {
		log.WithError(err).Warn("tracer shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("stopped")
}
