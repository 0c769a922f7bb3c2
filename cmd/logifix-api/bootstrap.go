package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/byTonho/logifix/config"
	"github.com/byTonho/logifix/internal/broker/kafka"
	"github.com/byTonho/logifix/internal/cache/rediscache"
	"github.com/byTonho/logifix/internal/services/audit"
	"github.com/byTonho/logifix/internal/services/auth"
	"github.com/byTonho/logifix/internal/services/board"
	"github.com/byTonho/logifix/internal/services/carriers"
	"github.com/byTonho/logifix/internal/services/occurrences"
	"github.com/byTonho/logifix/internal/services/users"
	"github.com/byTonho/logifix/internal/storage/pgboard"
)

type logifixAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     logifixAPIOpts
	svcs     logifixServices
	consumer *kafka.Consumer
	producer *kafka.Producer
	closeDB  func()
}

func mustBootstrapLogiFixAPI() *logifixAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config, %v", err))
	}

	httpAddr := cfg.LogiFix.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.LogiFix.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "logifix-api"
	}
	topic := cfg.Kafka.AuditLoggedTopicName
	if topic == "" {
		topic = "audit.logged"
	}

	cacheTTL := time.Duration(cfg.LogiFix.CurrentOccurrenceTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	retention := time.Duration(cfg.LogiFix.DoneRetentionDays) * 24 * time.Hour
	if retention <= 0 {
		retention = 3 * 24 * time.Hour
	}
	tokenTTL := time.Duration(cfg.LogiFix.TokenTTLHours) * time.Hour
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	loginLimit := int64(cfg.LogiFix.LoginRateLimitPerMin)
	if loginLimit <= 0 {
		loginLimit = 10
	}
	if cfg.LogiFix.JWTSecret == "" {
		panic("logifix.jwt_secret is required")
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)
	seen := rediscache.NewSeenStore(redisAddr)
	limiter := rediscache.NewRateLimiter(redisAddr)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	recorder := audit.NewRecorder(producer, topic)
	consumer := kafka.NewConsumer(brokers, topic, consumerGroup)

	svcs := logifixServices{
		occurrences: occurrences.New(st, st, rc, cacheTTL, recorder, cfg.LogiFix.DefaultResponsibleName),
		board:       board.New(seen, retention),
		carriers:    carriers.New(st, recorder),
		users:       users.New(st, recorder),
		auth:        auth.New(st, limiter, cfg.LogiFix.JWTSecret, tokenTTL, loginLimit),
		audit:       audit.NewService(st),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &logifixAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: logifixAPIOpts{
			httpAddr:      httpAddr,
			swaggerPath:   swaggerPath,
			topic:         topic,
			consumerGroup: consumerGroup,
		},
		svcs:     svcs,
		consumer: consumer,
		producer: producer,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgboard.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgboard.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *logifixAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *logifixAPIApp) Run() error {
	return runLogiFixAPI(a.ctx, a.opts, a.svcs, a.consumer)
}
