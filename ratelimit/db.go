package ratelimit

import (
	"bitwise74/leads-api/model"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBLimiter keeps its counters in the rate_counters table. The upsert
// holds the row lock until the transaction commits so concurrent hits
// on the same key are serialized by the database.
type DBLimiter struct {
	DB     *gorm.DB
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewDBLimiter(db *gorm.DB, max int, window time.Duration) *DBLimiter {
	if window <= 0 {
		window = DefaultWindow
	}

	return &DBLimiter{
		DB:     db,
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
	}
}

func (l *DBLimiter) Allow(ctx context.Context, key string) (Result, error) {
	var res Result

	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = l.AllowTx(tx, key)
		return err
	})

	return res, err
}

// AllowTx counts the hit on tx. The counter row stays locked until tx ends.
func (l *DBLimiter) AllowTx(tx *gorm.DB, key string) (Result, error) {
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)

	counter := model.RateCounter{
		Bucket:      key,
		WindowStart: winStart.Unix(),
		Count:       1,
		ExpiresAt:   winEnd,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bucket"}, {Name: "window_start"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count": gorm.Expr("rate_counters.count + 1"),
		}),
	}).Create(&counter).Error
	if err == nil {
		err = tx.Where("bucket = ? AND window_start = ?", key, winStart.Unix()).First(&counter).Error
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate counter, %w", err)
	}

	return result(counter.Count, l.Max, winStart, winEnd, now), nil
}

// Prune removes counters of windows that already ended
func (l *DBLimiter) Prune(ctx context.Context) (int64, error) {
	r := l.DB.WithContext(ctx).
		Where("expires_at < ?", l.Now().UTC()).
		Delete(&model.RateCounter{})

	return r.RowsAffected, r.Error
}
