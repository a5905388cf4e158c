// Package service contains the resource request workflow: storing leads,
// prioritizing them and sending the notifications.
package service

import (
	"bitwise74/leads-api/email"
	"bitwise74/leads-api/metrics"
	"bitwise74/leads-api/model"
	"bitwise74/leads-api/priority"
	"bitwise74/leads-api/ratelimit"
	"bitwise74/leads-api/validators"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultRetention = 30 * 24 * time.Hour

	rateLimitPrefix = "resource_request:"
)

// Notifier is implemented by email.Service
type Notifier interface {
	SendResourceRequest(ctx context.Context, d email.ResourceRequestEmail) bool
	SendAuditAlert(ctx context.Context, d email.AuditAlertEmail) bool
	SendAutoResponse(ctx context.Context, d email.AutoResponseEmail) bool
	SendWeeklyReport(ctx context.Context, d email.WeeklyReportEmail) bool
}

type Options struct {
	MaxPerDay    int
	AutoResponse bool
	Retention    time.Duration
}

// OptionsFromConfig reads the audit.* and retention.* keys
func OptionsFromConfig() Options {
	return Options{
		MaxPerDay:    viper.GetInt("audit.max_requests_per_day"),
		AutoResponse: viper.GetBool("audit.enable_auto_response"),
		Retention:    time.Duration(viper.GetInt("retention.days")) * 24 * time.Hour,
	}
}

type ResourceRequests struct {
	db       *gorm.DB
	limiter  ratelimit.Limiter
	notifier Notifier
	opts     Options
	now      func() time.Time
}

func NewResourceRequests(db *gorm.DB, limiter ratelimit.Limiter, notifier Notifier, opts Options) *ResourceRequests {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}

	return &ResourceRequests{
		db:       db,
		limiter:  limiter,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

type Submission struct {
	UserEmail   string `json:"userEmail"`
	ResourceURL string `json:"resourceUrl"`
	SourceURL   string `json:"sourceUrl"`
	Message     string `json:"message"`
}

func (s *Submission) normalize() {
	s.UserEmail = strings.ToLower(strings.TrimSpace(s.UserEmail))
	s.ResourceURL = strings.TrimSpace(s.ResourceURL)
	s.SourceURL = strings.TrimSpace(s.SourceURL)
	s.Message = strings.TrimSpace(s.Message)
}

func (s *Submission) validate() error {
	if err := validators.EmailValidator(s.UserEmail); err != nil {
		return &ValidationError{Field: "userEmail", Err: err}
	}

	if err := validators.URLValidator(s.ResourceURL); err != nil {
		return &ValidationError{Field: "resourceUrl", Err: err}
	}

	if s.SourceURL != "" {
		if err := validators.URLValidator(s.SourceURL); err != nil {
			return &ValidationError{Field: "sourceUrl", Err: err}
		}
	}

	if err := validators.MessageValidator(s.Message); err != nil {
		return &ValidationError{Field: "message", Err: err}
	}

	return nil
}

// SubmitRequest stores a lead and notifies about it. The returned error is a
// *ValidationError, a *RateLimitError or wraps ErrStorage. Notification
// failures never fail the submission.
func (r *ResourceRequests) SubmitRequest(ctx context.Context, s Submission) (string, error) {
	s.normalize()
	if err := s.validate(); err != nil {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return "", err
	}

	key := rateLimitPrefix + s.UserEmail

	// A DB limiter counts the hit in the insert transaction below. Others
	// count it here and get it released if the insert fails.
	txLimiter, inTx := r.limiter.(ratelimit.TxLimiter)

	var limit ratelimit.Result
	if !inTx {
		var err error
		limit, err = r.limiter.Allow(ctx, key)
		if err != nil {
			metrics.Submissions.WithLabelValues("error").Inc()
			return "", storageErr("check rate limit", err)
		}

		if !limit.Allowed {
			metrics.Submissions.WithLabelValues("rate_limited").Inc()
			return "", r.rateLimitErr(limit)
		}
	}

	now := r.now().UTC()
	req := model.ResourceRequest{
		ID:          uuid.NewString(),
		ResourceURL: s.ResourceURL,
		UserEmail:   s.UserEmail,
		Message:     s.Message,
		SourceURL:   s.SourceURL,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var prio priority.Result

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inTx {
			res, err := txLimiter.AllowTx(tx, key)
			if err != nil {
				return err
			}

			if !res.Allowed {
				return r.rateLimitErr(res)
			}
		}

		counter, err := bumpCounter(tx, s.ResourceURL, now)
		if err != nil {
			return err
		}

		days := int(now.Sub(counter.FirstRequestedAt) / (24 * time.Hour))

		prio, err = priority.Calculate(priority.Input{
			RequestCount:   counter.Count,
			DaysSinceFirst: max(days, 0),
			ResourceURL:    s.ResourceURL,
			SourceURL:      s.SourceURL,
		})
		if err != nil {
			return err
		}

		req.Priority = prio.Level
		req.RequestCount = counter.Count

		if err := tx.Create(&req).Error; err != nil {
			return err
		}

		err = tx.Model(&model.ResourceCounter{}).
			Where("resource_url = ? AND priority < ?", s.ResourceURL, prio.Level).
			Update("priority", prio.Level).
			Error
		if err != nil {
			return err
		}

		// Older leads for the same resource move up the queue with it
		return tx.Model(&model.ResourceRequest{}).
			Where("resource_url = ? AND status = ? AND priority < ?", s.ResourceURL, model.StatusPending, prio.Level).
			Updates(map[string]any{"priority": prio.Level, "updated_at": now}).
			Error
	})
	if err != nil {
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			metrics.Submissions.WithLabelValues("rate_limited").Inc()
			return "", rlErr
		}

		if rel, ok := r.limiter.(ratelimit.Releaser); ok && !inTx {
			if relErr := rel.Release(ctx, key, limit); relErr != nil {
				zap.L().Warn("Failed to release rate limit hit", zap.String("key", key), zap.Error(relErr))
			}
		}

		metrics.Submissions.WithLabelValues("error").Inc()
		return "", storageErr("store resource request", err)
	}

	metrics.Submissions.WithLabelValues("accepted").Inc()
	metrics.PriorityLevels.Observe(float64(prio.Level))

	zap.L().Info("Resource request stored",
		zap.String("id", req.ID),
		zap.String("resource_url", req.ResourceURL),
		zap.Int("priority", req.Priority),
		zap.Int64("request_count", req.RequestCount))

	r.notify(ctx, &req, prio)

	return req.ID, nil
}

func (r *ResourceRequests) rateLimitErr(limit ratelimit.Result) *RateLimitError {
	return &RateLimitError{Limit: int64(r.opts.MaxPerDay), RetryAfter: limit.RetryAfter}
}

// bumpCounter increments the cumulative counter of a resource and returns
// its new state. Has to run inside a transaction.
func bumpCounter(tx *gorm.DB, resourceURL string, now time.Time) (*model.ResourceCounter, error) {
	counter := model.ResourceCounter{
		ResourceURL:      resourceURL,
		Count:            1,
		Priority:         priority.MinLevel,
		FirstRequestedAt: now,
		LastRequestedAt:  now,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "resource_url"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":             gorm.Expr("resource_counters.count + 1"),
			"last_requested_at": now,
		}),
	}).Create(&counter).Error
	if err != nil {
		return nil, err
	}

	if err := tx.Where("resource_url = ?", resourceURL).First(&counter).Error; err != nil {
		return nil, err
	}

	return &counter, nil
}

func (r *ResourceRequests) notify(ctx context.Context, req *model.ResourceRequest, prio priority.Result) {
	data := email.ResourceRequestEmail{
		RequestID:    req.ID,
		UserEmail:    req.UserEmail,
		ResourceURL:  req.ResourceURL,
		SourceURL:    req.SourceURL,
		Message:      req.Message,
		Priority:     req.Priority,
		RequestCount: req.RequestCount,
		CreatedAt:    req.CreatedAt,
	}

	var sent bool
	if prio.High() {
		sent = r.notifier.SendAuditAlert(ctx, email.AuditAlertEmail{ResourceRequestEmail: data, Factors: prio.Factors})
	} else {
		sent = r.notifier.SendResourceRequest(ctx, data)
	}

	if !sent {
		zap.L().Warn("Admin notification failed, request is still stored", zap.String("id", req.ID))
	}

	if !r.opts.AutoResponse {
		return
	}

	if !r.notifier.SendAutoResponse(ctx, email.AutoResponseEmail{
		UserEmail:   req.UserEmail,
		ResourceURL: req.ResourceURL,
		RequestID:   req.ID,
	}) {
		zap.L().Warn("Auto-response failed, request is still stored", zap.String("id", req.ID))
	}
}
