package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Content  ContentConfig
	Rotation RotationConfig
	Booking  BookingConfig
	Log      LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	rotation, err := loadRotationConfig()
	if err != nil {
		return nil, err
	}

	booking, err := loadBookingConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Content:  ContentConfig{File: strings.TrimSpace(os.Getenv("CONTENT_FILE"))},
		Rotation: rotation,
		Booking:  booking,
		Log:      logCfg,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址与跨域来源。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// ContentConfig 描述推荐语内容来源，File 为空时使用内置数据。
type ContentConfig struct {
	File string
}

// RotationConfig 描述推荐语轮播参数。
type RotationConfig struct {
	Interval     time.Duration
	FadeDuration time.Duration
	Seed         *uint64
	AutoStart    bool
	MaxQueued    int
}

func loadRotationConfig() (RotationConfig, error) {
	interval, err := parseDurationEnv("ROTATION_INTERVAL", 5*time.Second)
	if err != nil {
		return RotationConfig{}, err
	}

	// 必须与前端淡出动画时长一致
	fade, err := parseDurationEnv("ROTATION_FADE", 500*time.Millisecond)
	if err != nil {
		return RotationConfig{}, err
	}

	if interval <= fade {
		return RotationConfig{}, fmt.Errorf("ROTATION_INTERVAL (%s) must be longer than ROTATION_FADE (%s)", interval, fade)
	}

	seed, err := parseOptionalUintEnv("ROTATION_SEED")
	if err != nil {
		return RotationConfig{}, err
	}

	autoStart, err := parseBoolEnv("ROTATION_AUTOSTART", true)
	if err != nil {
		return RotationConfig{}, err
	}

	maxQueued := 1
	if override, err := parseOptionalIntEnv("ROTATION_MAX_QUEUED"); err != nil {
		return RotationConfig{}, err
	} else if override != nil {
		maxQueued = *override
	}

	return RotationConfig{
		Interval:     interval,
		FadeDuration: fade,
		Seed:         seed,
		AutoStart:    autoStart,
		MaxQueued:    maxQueued,
	}, nil
}

// BookingConfig 描述预约表单的投递队列，RedisAddr 为空时仅记录日志。
type BookingConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool
	QueueKey      string
}

// QueueEnabled 表示是否配置了 Redis 投递队列。
func (c BookingConfig) QueueEnabled() bool {
	return c.RedisAddr != ""
}

func loadBookingConfig() (BookingConfig, error) {
	db := 0
	if override, err := parseOptionalIntEnv("BOOKING_REDIS_DB"); err != nil {
		return BookingConfig{}, err
	} else if override != nil {
		db = *override
	}

	useTLS, err := parseBoolEnv("BOOKING_REDIS_TLS", false)
	if err != nil {
		return BookingConfig{}, err
	}

	return BookingConfig{
		RedisAddr:     strings.TrimSpace(os.Getenv("BOOKING_REDIS_ADDR")),
		RedisPassword: os.Getenv("BOOKING_REDIS_PASSWORD"),
		RedisDB:       db,
		RedisTLS:      useTLS,
		QueueKey:      getEnvOrDefault("BOOKING_QUEUE_KEY", "booking:outbox"),
	}, nil
}

// LogConfig 描述日志级别与格式。
type LogConfig struct {
	Level       string
	Development bool
}

func loadLogConfig() (LogConfig, error) {
	dev, err := parseBoolEnv("LOG_DEV", false)
	if err != nil {
		return LogConfig{}, err
	}

	level := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q", level)
	}

	return LogConfig{Level: level, Development: dev}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalUintEnv(key string) (*uint64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
