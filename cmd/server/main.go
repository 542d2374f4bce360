package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"puzzleboard/internal/api/handlers"
	"puzzleboard/internal/config"
	"puzzleboard/internal/jobs"
	applog "puzzleboard/internal/logger"
	"puzzleboard/internal/parser"
	"puzzleboard/internal/repository"
	"puzzleboard/internal/scoring"
	"puzzleboard/internal/service"
	"puzzleboard/internal/websocket"
	"puzzleboard/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := applog.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	log.Info("Connected to PostgreSQL")

	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.GetRedisAddr()))

	postgresRepo := repository.NewPostgresRepository(db)
	redisRepo := repository.NewRedisRepository(redisClient)

	if err := postgresRepo.AutoMigrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed")

	thresholds, err := config.LoadWinThresholds(cfg.Parser.WinThresholdsFile)
	if err != nil {
		log.Fatal("Failed to load win thresholds", zap.Error(err))
	}
	registry := parser.Default(parser.Config{WinThresholds: thresholds}, log)
	log.Info("Parsers registered", zap.Int("games", len(registry.Games())))

	workerPool := worker.NewWorkerPool(cfg.Worker.Count, cfg.Worker.QueueSize, postgresRepo, redisRepo, log)
	workerPool.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(redisRepo, log)
	go hub.Run(ctx)

	resultService := service.NewResultService(
		registry,
		scoring.Default(),
		postgresRepo,
		redisRepo,
		workerPool,
		service.Options{RankingTTL: cfg.Cache.RankingTTL},
		log,
	)

	leaderboardHandler := handlers.NewLeaderboardHandler(resultService, hub).
		WithMetrics("workers", workerPool)

	var simulator *jobs.SimulationManager
	if cfg.Simulator.Enabled {
		simulator = jobs.NewSimulationManager(resultService, jobs.SimulatorConfig{
			GroupID:      cfg.Simulator.GroupID,
			TickInterval: cfg.Simulator.Tick,
		}, log)
		if err := simulator.Start(ctx); err != nil {
			log.Warn("Failed to start simulator", zap.Error(err))
		} else {
			leaderboardHandler.WithMetrics("simulator", simulator)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Puzzleboard",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	leaderboardHandler.Register(app.Group("/api/v1"))

	app.Use("/ws", leaderboardHandler.UpgradeWebSocket)
	app.Get("/ws", fiberws.New(leaderboardHandler.HandleWebSocket))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Puzzleboard API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/parse",
				"POST /api/v1/results",
				"GET /api/v1/games",
				"GET /api/v1/health",
				"GET|POST|DELETE /api/v1/groups/:group/members",
				"GET /api/v1/groups/:group/rankings/daily?game=&date=",
				"GET /api/v1/groups/:group/rankings/historical?game=",
				"GET /api/v1/groups/:group/rankings/combined?scope=daily|alltime&date=",
				"WS /ws?group= (WebSocket)",
			},
			"websocket_clients": hub.GetClientCount(),
		})
	})

	// Graceful shutdown: stop the feed, stop HTTP, flush pending writes,
	// then close connections.
	done := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdown([]shutdownStep{
			{name: "simulator", run: func() error {
				if simulator != nil {
					simulator.Stop()
				}
				return nil
			}},
			{name: "http", run: func() error {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				return app.ShutdownWithContext(shutdownCtx)
			}},
			{name: "workers", run: func() error {
				return workerPool.Shutdown(cfg.Worker.ShutdownTimeout)
			}},
			{name: "hub", run: func() error {
				cancel()
				return nil
			}},
			{name: "postgres", run: postgresRepo.Close},
			{name: "redis", run: redisRepo.Close},
		}, done, log)
	}()

	port := cfg.Server.Port
	log.Info("Server starting", zap.Int("port", port))
	if err := serve(func() error { return app.Listen(fmt.Sprintf(":%d", port)) }, done); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// initPostgres opens PostgreSQL with a pool sized for the worker pool
func initPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Every worker may hold a connection while ranking reads continue.
	sqlDB.SetMaxOpenConns(cfg.Worker.Count + 10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// initRedis opens the Redis client used for versions and the ranking cache
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
