package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"puzzleboard/internal/config"
	"puzzleboard/internal/jobs"
	applog "puzzleboard/internal/logger"
	"puzzleboard/internal/models"
	"puzzleboard/internal/parser"
	"puzzleboard/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	BatchSize      = 500
	UsernamePrefix = "player_"
)

var (
	members int
	days    int
	seed    int64
)

// rootCmd seeds a demo group with generated history
var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed a demo group with generated puzzle results",
	Long: `seeder adds demo members to the simulator group and stores a few days of
generated results for them. Every result goes through the share-text parsers,
so seeded rows look exactly like real submissions.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().IntVar(&members, "members", 8, "number of demo members")
	rootCmd.Flags().IntVar(&days, "days", 7, "days of history ending today")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	if members < 1 {
		return fmt.Errorf("--members must be at least 1, got %d", members)
	}
	if days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", days)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := applog.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	group := cfg.Simulator.GroupID
	log.Info("Starting seeder", zap.String("group", group), zap.Int("members", members), zap.Int("days", days))

	db, err := initPostgres(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	redisClient, err := initRedis(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	postgresRepo := repository.NewPostgresRepository(db)
	redisRepo := repository.NewRedisRepository(redisClient)
	defer postgresRepo.Close()
	defer redisRepo.Close()

	if err := postgresRepo.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	users := make([]string, members)
	for i := range users {
		users[i] = fmt.Sprintf("%s%d", UsernamePrefix, i+1)
		if err := postgresRepo.AddMember(ctx, group, users[i]); err != nil {
			return fmt.Errorf("failed to add member %s: %w", users[i], err)
		}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results, err := generateResults(users, days, time.Now().UTC(), rng, log)
	if err != nil {
		return fmt.Errorf("failed to generate results: %w", err)
	}

	start := time.Now()
	if err := postgresRepo.BulkUpsertResults(ctx, results, BatchSize); err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}
	duration := time.Since(start)

	if _, err := redisRepo.BumpVersion(ctx, group); err != nil {
		return fmt.Errorf("failed to bump group version: %w", err)
	}

	total, err := postgresRepo.CountResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify results: %w", err)
	}

	log.Info("Seeding completed",
		zap.Int("inserted", len(results)),
		zap.Duration("duration", duration),
		zap.Int64("results_in_database", total),
	)
	return nil
}

// generateResults plays every demo game for every user on each of the last
// days, routing the generated share text through the parsers so stored
// rows match what a real submission would produce.
func generateResults(users []string, days int, today time.Time, rng *rand.Rand, log *zap.Logger) ([]models.ParsedResult, error) {
	var results []models.ParsedResult

	for d := days - 1; d >= 0; d-- {
		day := today.AddDate(0, 0, -d)
		registry := parser.Default(parser.Config{Clock: func() time.Time { return day }}, log)

		for _, user := range users {
			for _, id := range jobs.DemoGames {
				// Not everyone plays every game every day.
				if rng.Intn(4) == 0 {
					continue
				}
				text, err := jobs.ShareText(id, day, rng)
				if err != nil {
					return nil, err
				}
				res := registry.Parse(text)
				if res == nil {
					return nil, fmt.Errorf("generated %s text did not parse: %q", id, text)
				}
				res.UserID = user
				res.Timestamp = day.Add(time.Duration(rng.Intn(3600)) * time.Second).UnixMilli()
				results = append(results, *res)
			}
		}
	}

	return results, nil
}

// initPostgres initializes PostgreSQL connection
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
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// initRedis initializes Redis connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.GetRedisAddr(),
		Username:    cfg.Redis.Username,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  3,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
