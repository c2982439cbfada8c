package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"zapisnik/internal/audit"
	"zapisnik/internal/availability"
	"zapisnik/internal/booking"
	"zapisnik/internal/bot"
	"zapisnik/internal/config"
	"zapisnik/internal/db"
	"zapisnik/internal/events"
	"zapisnik/internal/heartbeat"
	"zapisnik/internal/metrics"
	"zapisnik/internal/notify"
	"zapisnik/internal/review"
	"zapisnik/internal/sheets"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Local development keeps secrets in .env; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("ZAPISNIK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Fatal().Msg("set telegram.bot_token in config")
	}
	if len(cfg.Admins) == 0 {
		logger.Fatal().Msg("set admins in config or ADMIN_ID in environment")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var rdb *redis.Client
	var sessions booking.SessionStore
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		sessions = booking.NewRedisSessionStore(rdb, cfg.SessionTTL())
	} else {
		sessions = booking.NewMemorySessionStore(cfg.SessionTTL())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	avail := availability.NewCalculator(database)
	bookingSvc := booking.NewService(database, avail, sessions, bus, logger)
	reviewSvc := review.NewService(database, cfg.Admins, bus, logger)
	exporter := audit.NewExporter(database)

	if cfg.Sheets.Enabled {
		creds, err := os.ReadFile(cfg.Sheets.CredentialsFile)
		if err != nil {
			logger.Error().Err(err).Msg("failed to read sheets credentials")
		} else {
			mirror, err := sheets.NewService(ctx, creds, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, database, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to init sheets mirror")
			} else {
				mirror.Subscribe(ctx, bus)
				logger.Info().Msg("sheets mirror enabled")
			}
		}
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("create telegram client error")
	}
	api.Debug = cfg.Telegram.Debug
	notifier := notify.NewNotifier(api, cfg.NotifyRate(), logger)

	b, err := bot.New(api, bookingSvc, reviewSvc, avail, notifier, exporter, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	go heartbeat.Run(ctx, cfg.HeartbeatInterval(), logger)

	logger.Info().Msg("appointment bot started")
	b.Start(ctx)
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
