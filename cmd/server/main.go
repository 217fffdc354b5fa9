package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"automarket/config"
	"automarket/internal/database"
	"automarket/internal/events"
	"automarket/internal/middleware"
	"automarket/internal/router"
	"automarket/internal/service"
	"automarket/pkg/cloudinary"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database, cfg.Server.Env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedStaff(db, &cfg.Seed)

	deps := router.Deps{
		Publisher: events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange),
		Redis:     middleware.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
		FCM:       service.NewFCMService(cfg.Firebase.ServiceAccountPath),
	}
	if cfg.Cloudinary.CloudName != "" {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		deps.Cloud = cloud
	} else {
		log.Printf("[cloudinary] not configured: image uploads disabled")
	}

	engine := router.Setup(cfg, db, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	if c, ok := deps.Publisher.(io.Closer); ok {
		_ = c.Close()
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	fmt.Println("server stopped")
}
