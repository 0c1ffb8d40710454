package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zhouzirui/showcase/backend/internal/config"
	"github.com/zhouzirui/showcase/backend/internal/handler"
	bookingHandler "github.com/zhouzirui/showcase/backend/internal/handler/booking"
	galleryHandler "github.com/zhouzirui/showcase/backend/internal/handler/gallery"
	testimonialHandler "github.com/zhouzirui/showcase/backend/internal/handler/testimonial"
	"github.com/zhouzirui/showcase/backend/internal/model/gallery"
	"github.com/zhouzirui/showcase/backend/internal/model/testimonial"
	"github.com/zhouzirui/showcase/backend/internal/service/booking"
	"github.com/zhouzirui/showcase/backend/internal/service/broadcast"
	"github.com/zhouzirui/showcase/backend/internal/service/rotation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Content pool
	content := testimonial.Seed()
	if cfg.Content.File != "" {
		content, err = testimonial.LoadFile(cfg.Content.File)
		if err != nil {
			logger.Fatal("failed to load testimonials", zap.String("file", cfg.Content.File), zap.Error(err))
		}
		logger.Info("testimonials loaded from file", zap.String("file", cfg.Content.File), zap.Int("count", len(content)))
	}

	// Testimonial carousel: the hub is the rendering layer
	hub := broadcast.NewHub(logger.Named("hub"), broadcast.DefaultBuffer)
	opts := rotation.Options{
		Interval:     cfg.Rotation.Interval,
		FadeDuration: cfg.Rotation.FadeDuration,
		MaxQueued:    cfg.Rotation.MaxQueued,
		Renderer:     hub,
		Logger:       logger.Named("rotation"),
	}
	if cfg.Rotation.Seed != nil {
		opts.Rand = rotation.NewRand(*cfg.Rotation.Seed)
	}
	engine, err := rotation.New(content, opts)
	if err != nil {
		logger.Fatal("failed to build testimonial carousel", zap.Error(err))
	}
	defer engine.Close()

	engine.Initialize()
	if cfg.Rotation.AutoStart {
		engine.StartAutoRotation()
	}

	// Booking dispatch
	var dispatcher booking.Dispatcher
	if cfg.Booking.QueueEnabled() {
		redisDispatcher := booking.NewRedisDispatcher(booking.RedisConfig{
			Addr:     cfg.Booking.RedisAddr,
			Password: cfg.Booking.RedisPassword,
			DB:       cfg.Booking.RedisDB,
			UseTLS:   cfg.Booking.RedisTLS,
			Key:      cfg.Booking.QueueKey,
		})
		defer redisDispatcher.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisDispatcher.Ping(pingCtx); err != nil {
			logger.Warn("booking queue unreachable at startup", zap.String("addr", cfg.Booking.RedisAddr), zap.Error(err))
		}
		cancel()
		dispatcher = redisDispatcher
		logger.Info("booking queue enabled", zap.String("key", cfg.Booking.QueueKey))
	} else {
		dispatcher = booking.NewLogDispatcher(logger.Named("booking"))
		logger.Info("booking queue not configured, bookings will only be logged")
	}
	bookingSvc := booking.NewService(dispatcher, logger.Named("booking"))

	router := handler.NewRouter(handler.Handlers{
		Testimonials: testimonialHandler.New(testimonial.NewMemoryStore(content), engine, hub, logger.Named("testimonials")),
		Gallery:      galleryHandler.New(gallery.NewStore(gallery.Seed())),
		Booking:      bookingHandler.New(bookingSvc, logger.Named("booking")),
	}, cfg.Server.AllowedOrigins)

	startServer(ctx, logger, cfg.Server, router)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Long-lived carousel streams end when the process is told to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.Info("showcase backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
