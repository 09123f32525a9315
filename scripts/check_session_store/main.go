package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Checks connectivity to the session store selected by SESSION_STORE using
// the same environment as the gateway.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		err = checkPostgres(ctx, cfg.Database)
	case config.SessionStoreRedis:
		err = checkRedis(ctx, cfg.Redis)
	default:
		fmt.Println("Session store is in-memory; nothing to check")
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Session store check failed: %v\n", err)
		os.Exit(1)
	}
}

func checkPostgres(ctx context.Context, cfg config.DatabaseConfig) error {
	pool, err := database.NewPool(ctx, cfg, zerolog.Nop())
	if err != nil {
		return err
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("QueryRow failed: %w", err)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var live, expired int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE expires_at > NOW()), COUNT(*) FILTER (WHERE expires_at <= NOW()) FROM sessions`,
	).Scan(&live, &expired)
	if err != nil {
		return fmt.Errorf("sessions table not readable (run the gateway once to migrate): %w", err)
	}

	fmt.Printf("Sessions: %d live, %d expired\n", live, expired)
	return nil
}

func checkRedis(ctx context.Context, cfg config.RedisConfig) error {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var count int
	iter := client.Scan(ctx, 0, "session:*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("Successfully connected to redis at %s, %d sessions stored\n", cfg.Addr, count)
	return nil
}
