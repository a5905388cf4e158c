package cmd

import (
	"bitwise74/leads-api/db"
	"bitwise74/leads-api/email"
	"bitwise74/leads-api/ratelimit"
	"bitwise74/leads-api/service"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type deps struct {
	DB       *gorm.DB
	Mail     *email.Service
	Requests *service.ResourceRequests
	// Set when the limiter keeps its counters in the database
	Pruner service.Pruner

	redis *redis.Client
}

// buildDeps wires the database, the email provider and the limiter from viper
func buildDeps(ctx context.Context) (*deps, error) {
	conn, err := db.New()
	if err != nil {
		return nil, err
	}

	mail, err := email.NewFromConfig()
	if err != nil {
		return nil, err
	}

	d := &deps{DB: conn, Mail: mail}
	opts := service.OptionsFromConfig()

	var limiter ratelimit.Limiter
	if addr := viper.GetString("redis.addr"); addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := d.redis.Ping(pingCtx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}

		limiter = ratelimit.NewRedisLimiter(d.redis, "", opts.MaxPerDay, 0)
		zap.L().Debug("Using redis rate limiter", zap.String("addr", addr))
	} else {
		dbLimiter := ratelimit.NewDBLimiter(conn, opts.MaxPerDay, 0)
		limiter = dbLimiter
		d.Pruner = dbLimiter
	}

	d.Requests = service.NewResourceRequests(conn, limiter, mail, opts)
	return d, nil
}

func (d *deps) Close() {
	if d.redis != nil {
		d.redis.Close()
	}

	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
