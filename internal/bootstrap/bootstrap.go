// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo populates an empty database with demo data. Ignored in production.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis. The Redis client is nil
// when REDIS_URL is empty or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = cache.Connect(ctx, cfg.RedisURL)
	}

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, rdb, nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Table("users").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	res, err := seed.NewSeeder(db, 0).Run(ctx, seed.Options{Users: 5, PostsPerUser: 3})
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "seeded demo data",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
	)
	return nil
}
