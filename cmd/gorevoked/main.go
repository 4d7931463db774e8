package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goRevoke "github.com/MrEthical07/goRevoke"
	"github.com/MrEthical07/goRevoke/directory"
	"github.com/MrEthical07/goRevoke/httpapi"
	promexport "github.com/MrEthical07/goRevoke/metrics/export/prometheus"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type serviceConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPrefix string `yaml:"redis_prefix"`

	JWT struct {
		Secret        string `yaml:"secret"`
		SigningMethod string `yaml:"signing_method"`
		PrivateKeyPEM string `yaml:"private_key_pem"`
		PublicKeyPEM  string `yaml:"public_key_pem"`
		Issuer        string `yaml:"issuer"`
		AccessTTL     string `yaml:"access_ttl"`
		RefreshTTL    string `yaml:"refresh_ttl"`
		Leeway        string `yaml:"leeway"`
	} `yaml:"jwt"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
	Debug          bool `yaml:"debug"`
}

func defaultServiceConfig() serviceConfig {
	var cfg serviceConfig
	cfg.ListenAddr = ":8080"
	cfg.RedisAddr = "localhost:6379"
	cfg.MetricsEnabled = true
	return cfg
}

func loadConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment overrides win over the file so deployments can keep
	// secrets out of it.
	overrideString(&cfg.ListenAddr, "GOREVOKE_LISTEN_ADDR")
	overrideString(&cfg.DatabaseURL, "GOREVOKE_DATABASE_URL")
	overrideString(&cfg.RedisAddr, "GOREVOKE_REDIS_ADDR")
	overrideString(&cfg.RedisPrefix, "GOREVOKE_REDIS_PREFIX")
	overrideString(&cfg.JWT.Secret, "GOREVOKE_JWT_SECRET")
	overrideString(&cfg.JWT.Issuer, "GOREVOKE_JWT_ISSUER")

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}

func engineConfig(cfg serviceConfig) (goRevoke.Config, error) {
	out := goRevoke.Config{}

	var err error
	if out.JWT.AccessTTL, err = parseDuration(cfg.JWT.AccessTTL); err != nil {
		return out, fmt.Errorf("parse access_ttl: %w", err)
	}
	if out.JWT.RefreshTTL, err = parseDuration(cfg.JWT.RefreshTTL); err != nil {
		return out, fmt.Errorf("parse refresh_ttl: %w", err)
	}
	if out.JWT.Leeway, err = parseDuration(cfg.JWT.Leeway); err != nil {
		return out, fmt.Errorf("parse leeway: %w", err)
	}

	out.JWT.SigningMethod = cfg.JWT.SigningMethod
	out.JWT.Issuer = cfg.JWT.Issuer
	out.Revocation.RedisPrefix = cfg.RedisPrefix
	out.Metrics.Enabled = cfg.MetricsEnabled

	switch cfg.JWT.SigningMethod {
	case "ed25519":
		out.JWT.PrivateKey = []byte(cfg.JWT.PrivateKeyPEM)
		out.JWT.PublicKey = []byte(cfg.JWT.PublicKeyPEM)
	default:
		out.JWT.PrivateKey = []byte(cfg.JWT.Secret)
	}

	return out, nil
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting_server",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
	)

	if cfg.DatabaseURL == "" {
		zapLogger.Fatal("database_url_not_configured")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_open_database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		zapLogger.Fatal("failed_to_reach_database", zap.Error(err))
	}
	pingCancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()

	pingCtx, pingCancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		zapLogger.Fatal("failed_to_reach_redis", zap.Error(err))
	}
	pingCancel()

	engineCfg, err := engineConfig(cfg)
	if err != nil {
		zapLogger.Fatal("invalid_jwt_configuration", zap.Error(err))
	}

	engine, err := goRevoke.New().
		WithConfig(engineCfg).
		WithRedis(redisClient).
		WithUserDirectory(directory.NewPostgres(db)).
		WithLogger(zapLogger).
		Build()
	if err != nil {
		zapLogger.Fatal("failed_to_build_engine", zap.Error(err))
	}

	handlers := httpapi.NewHandlers(engine, zapLogger)
	router := handlers.Router()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	if cfg.MetricsEnabled {
		exporter := promexport.NewPrometheusExporter(engine)
		router.Handle("/metrics", exporter.Handler()).Methods(http.MethodGet)
	}

	srv := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
