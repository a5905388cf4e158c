package service

import (
	"bitwise74/leads-api/metrics"
	"bitwise74/leads-api/model"
	"context"

	"go.uber.org/zap"
)

// CleanupOldRequests deletes requests created before the retention window.
// Resource counters are kept so the cumulative demand survives.
func (r *ResourceRequests) CleanupOldRequests(ctx context.Context) (int64, error) {
	cutoff := r.now().UTC().Add(-r.opts.Retention)

	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.ResourceRequest{})
	if res.Error != nil {
		return 0, storageErr("cleanup old requests", res.Error)
	}

	if res.RowsAffected > 0 {
		metrics.CleanupDeleted.Add(float64(res.RowsAffected))
		zap.L().Info("Old resource requests cleaned up", zap.Int64("deleted", res.RowsAffected), zap.Time("cutoff", cutoff))
	}

	return res.RowsAffected, nil
}
