package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-registration/internal/config"
	"ms-registration/internal/database/migrations"
	"ms-registration/internal/events"
	events_db "ms-registration/internal/events/db"
	"ms-registration/internal/events/event_api"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/passes"
	"ms-registration/internal/registration"
	"ms-registration/internal/registration/cache"
	registration_db "ms-registration/internal/registration/db"
	"ms-registration/internal/registration/registration_api"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN())))
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Schema up to date")
	}

	var listCache *cache.Cache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unreachable, listing cache disabled: %v", err))
		} else {
			listCache = cache.New(rdb, cfg.Redis.ListTTL)
			log.Info("REDIS", "Listing cache enabled")
		}
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		if err := kafka.CreateTopicIfNotExists(cfg.Kafka.Brokers, cfg.Kafka.RegistrationTopic); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.RegistrationTopic)
		defer producer.Close()
		log.Info("KAFKA", fmt.Sprintf("Publishing registrations to %s", cfg.Kafka.RegistrationTopic))
	}

	// Interface fields stay nil (not typed-nil) when a backend is disabled.
	var regCache registration.Cache
	var evCache events.Cache
	if listCache != nil {
		regCache = listCache
		evCache = listCache
	}
	var publisher registration.Publisher
	if producer != nil {
		publisher = producer
	}

	eventService := events.NewService(&events_db.DB{Bun: bunDB}, evCache, log)
	regService := registration.NewService(
		&registration_db.DB{Bun: bunDB, LockTimeout: cfg.Database.LockTimeout},
		publisher, regCache, log,
	)

	eventHandler := event_api.NewHandler(eventService, log)
	regHandler := registration_api.NewHandler(regService, passes.NewGenerator(cfg.Pass.SecretKey), log)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Route("/events", func(r chi.Router) {
		r.Post("/", eventHandler.CreateEvent)
		r.Get("/", eventHandler.ListEvents)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", eventHandler.GetEvent)
			r.Post("/register", regHandler.Register)
			r.Get("/attendees", eventHandler.ListAttendees)
			r.Get("/attendees/{attendeeID}/pass", regHandler.Pass)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Registration service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Registration service shutdown complete")
}
