package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"guessdb/internal/config"
	"guessdb/internal/repository"
	"guessdb/internal/service"
	"guessdb/migrations"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

const migrationRetries = 3

func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect without a database first so setup can create it.
	server, err := connectDB(cfg.ServerDSN())
	if err != nil {
		logger.Fatal().Err(err).
			Str("host", cfg.DBHost).
			Str("port", cfg.DBPort).
			Str("user", cfg.DBUser).
			Msg("Cannot reach MySQL; check DB_HOST, DB_PORT, DB_USER and DB_PASSWORD")
	}

	if err := migrations.EnsureDatabase(server, cfg.DBName); err != nil {
		logger.Fatal().Err(err).Str("database", cfg.DBName).Msg("Failed to create database")
	}
	server.Close()

	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Str("database", cfg.DBName).Msg("Cannot open database")
	}
	defer db.Close()

	if err := migrations.AutoMigrateUsers(migrationRetries, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create users table")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
	}

	// Read back through the service to prove the table is queryable.
	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, rdb)

	entries, err := userService.TopScores(context.Background(), 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("Users table verification failed")
	}

	logger.Info().
		Str("database", cfg.DBName).
		Int("recorded_scores", len(entries)).
		Msg("Setup complete: users table is ready")
}
