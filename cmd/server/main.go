package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/adapter/handler"
	"github.com/rl1809/aura-kitchen/internal/adapter/messaging"
	"github.com/rl1809/aura-kitchen/internal/adapter/storage"
	"github.com/rl1809/aura-kitchen/internal/config"
	"github.com/rl1809/aura-kitchen/internal/core/service"
	"github.com/rl1809/aura-kitchen/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := config.NewLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.Storage.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Info("connected to mysql")

	if cfg.Storage.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		log.Info("schema migrated")
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Info("connected to redis")

	// Initialize adapters
	redisAdapter := storage.NewRedisAdapter(rdb)
	var database port.DatabaseRepository = storage.NewMySQLAdapter(db)

	// Fresh menu after a migration or restart
	if err := redisAdapter.InvalidateMenu(ctx); err != nil {
		log.WithError(err).Warn("failed to invalidate menu cache")
	}

	var (
		publisher port.EventPublisher = messaging.NewLogPublisher(log)
		amqpConn  *amqp.Connection
	)
	if cfg.Events.AMQPURL != "" {
		conn, ch, err := messaging.SetupConn(cfg.Events.AMQPURL, log)
		if err != nil {
			log.Fatalf("failed to connect rabbitmq: %v", err)
		}
		amqpConn = conn
		publisher = messaging.NewRabbitPublisher(ch)
		log.WithField("exchange", messaging.ExchangeName).Info("connected to rabbitmq")
	} else {
		log.Info("AMQP_URL not set, order events will only be logged")
	}

	// Initialize services
	orderService := service.NewOrderService(database, redisAdapter, cfg.Events.QueueSize, log)
	menuService := service.NewMenuService(database, redisAdapter, cfg.Server.MenuCacheTTL, log)
	reviewService := service.NewReviewService(database, log)
	contactService := service.NewContactService(database, log)
	authService := service.NewAuthService(database, redisAdapter, cfg.Server.SessionTTL, log)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.Events.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.PublishEvents(id, orderService.GetEventQueue(), publisher, log)
		}(i)
	}
	log.Infof("started %d workers", cfg.Events.WorkerCount)

	// Initialize HTTP server
	authLimiter := handler.NewRateLimiter(1, 5)
	authLimiter.StartCleanup(ctx, 10*time.Minute, 10000)

	httpHandler := handler.NewHTTPHandler(handler.Services{
		Orders:  orderService,
		Menu:    menuService,
		Reviews: reviewService,
		Contact: contactService,
		Auth:    authService,
	}, log, handler.WithAuthLimiter(authLimiter))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server did not drain in time, closing open connections")
		httpServer.Close()
	}
	log.Info("HTTP server stopped")

	// Close event queue and wait for workers
	orderService.Close()
	wg.Wait()
	log.Info("workers stopped")

	// Close connections
	if amqpConn != nil {
		amqpConn.Close()
	}
	rdb.Close()
	db.Close()
	log.Info("connections closed")
}
