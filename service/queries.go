package service

import (
	"bitwise74/leads-api/model"
	"bitwise74/leads-api/priority"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 250
)

type Stats struct {
	Total               int64 `json:"total"`
	Pending             int64 `json:"pending"`
	InProgress          int64 `json:"inProgress"`
	Completed           int64 `json:"completed"`
	Rejected            int64 `json:"rejected"`
	Last24h             int64 `json:"last24h"`
	Last7d              int64 `json:"last7d"`
	HighPriorityPending int64 `json:"highPriorityPending"`
	UniqueResources     int64 `json:"uniqueResources"`
}

type statusCount struct {
	Status model.RequestStatus
	Total  int64
}

// GetRequestCount returns how many times a resource was requested in total
func (r *ResourceRequests) GetRequestCount(ctx context.Context, resourceURL string) (int64, error) {
	var counter model.ResourceCounter

	err := r.db.WithContext(ctx).
		Where("resource_url = ?", resourceURL).
		First(&counter).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, storageErr("load request count", err)
	}

	return counter.Count, nil
}

func (r *ResourceRequests) GetRequestStats(ctx context.Context) (*Stats, error) {
	db := r.db.WithContext(ctx)
	now := r.now().UTC()

	var rows []statusCount
	err := db.Model(&model.ResourceRequest{}).
		Select("status, count(*) AS total").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, storageErr("count requests by status", err)
	}

	var stats Stats
	for _, row := range rows {
		stats.Total += row.Total

		switch row.Status {
		case model.StatusPending:
			stats.Pending = row.Total
		case model.StatusInProgress:
			stats.InProgress = row.Total
		case model.StatusCompleted:
			stats.Completed = row.Total
		case model.StatusRejected:
			stats.Rejected = row.Total
		default:
			zap.L().Warn("Unknown request status in database", zap.String("status", string(row.Status)))
		}
	}

	counts := []struct {
		dst   *int64
		query func(*gorm.DB) *gorm.DB
	}{
		{&stats.Last24h, func(q *gorm.DB) *gorm.DB { return q.Where("created_at >= ?", now.Add(-24*time.Hour)) }},
		{&stats.Last7d, func(q *gorm.DB) *gorm.DB { return q.Where("created_at >= ?", now.AddDate(0, 0, -7)) }},
		{&stats.HighPriorityPending, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ? AND priority >= ?", model.StatusPending, priority.HighLevel)
		}},
		{&stats.UniqueResources, func(q *gorm.DB) *gorm.DB { return q.Distinct("resource_url") }},
	}

	for _, c := range counts {
		if err := c.query(db.Model(&model.ResourceRequest{})).Count(c.dst).Error; err != nil {
			return nil, storageErr("aggregate requests", err)
		}
	}

	return &stats, nil
}

// GetMostRequestedResources returns the resources with the highest
// cumulative demand
func (r *ResourceRequests) GetMostRequestedResources(ctx context.Context, limit int) ([]model.ResourceCounter, error) {
	var out []model.ResourceCounter

	err := r.db.WithContext(ctx).
		Order("count DESC").
		Order("last_requested_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).
		Error
	if err != nil {
		return nil, storageErr("load most requested resources", err)
	}

	return out, nil
}

// GetPendingRequests returns the admin queue, highest priority and oldest first
func (r *ResourceRequests) GetPendingRequests(ctx context.Context, limit int) ([]model.ResourceRequest, error) {
	var out []model.ResourceRequest

	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPending).
		Order("priority DESC").
		Order("created_at ASC").
		Limit(clampLimit(limit)).
		Find(&out).
		Error
	if err != nil {
		return nil, storageErr("load pending requests", err)
	}

	return out, nil
}

// UpdateRequestStatus sets the status picked by an admin
func (r *ResourceRequests) UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res := r.db.WithContext(ctx).
		Model(&model.ResourceRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": r.now().UTC()})
	if res.Error != nil {
		return storageErr("update request status", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	zap.L().Info("Resource request status updated", zap.String("id", id), zap.String("status", string(status)))
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	return min(limit, MaxListLimit)
}
