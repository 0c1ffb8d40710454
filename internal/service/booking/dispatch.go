package booking

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zhouzirui/showcase/backend/internal/model/booking"
)

// LogDispatcher only records bookings. Used when no queue is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher returns a dispatcher that writes bookings to logger.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

// Dispatch implements Dispatcher.
func (d *LogDispatcher) Dispatch(_ context.Context, b booking.Booking) error {
	d.logger.Info("booking received (no queue configured)",
		zap.String("booking", b.ID),
		zap.String("name", b.Request.Name),
		zap.String("email", b.Request.Email),
		zap.String("date", b.Request.Date))
	return nil
}

// RedisConfig selects the outbox list the email worker consumes.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
	Key      string
}

// RedisDispatcher pushes bookings as JSON onto a Redis list.
type RedisDispatcher struct {
	client *redis.Client
	key    string
}

// NewRedisDispatcher connects lazily; call Ping to verify the connection.
func NewRedisDispatcher(cfg RedisConfig) *RedisDispatcher {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return &RedisDispatcher{client: redis.NewClient(opts), key: cfg.Key}
}

// Ping checks that the queue is reachable.
func (d *RedisDispatcher) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Dispatch implements Dispatcher.
func (d *RedisDispatcher) Dispatch(ctx context.Context, b booking.Booking) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	if err := d.client.RPush(ctx, d.key, payload).Err(); err != nil {
		return fmt.Errorf("push booking to %s: %w", d.key, err)
	}
	return nil
}

// Close releases the connection pool.
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}
