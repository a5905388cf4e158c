package service

import (
	"bitwise74/leads-api/email"
	"bitwise74/leads-api/model"
	"context"
)

const reportTopResources = 10

type weeklyResource struct {
	ResourceURL string
	Requests    int64
	Priority    int
}

// BuildWeeklyReport collects the digest of the last 7 days
func (r *ResourceRequests) BuildWeeklyReport(ctx context.Context) (*email.WeeklyReportEmail, error) {
	end := r.now().UTC()
	start := end.AddDate(0, 0, -7)
	db := r.db.WithContext(ctx)

	stats, err := r.GetRequestStats(ctx)
	if err != nil {
		return nil, err
	}

	report := &email.WeeklyReportEmail{
		PeriodStart:     start,
		PeriodEnd:       end,
		PendingTotal:    stats.Pending,
		HighPriority:    stats.HighPriorityPending,
		UniqueResources: stats.UniqueResources,
	}

	var rows []statusCount
	err = db.Model(&model.ResourceRequest{}).
		Select("status, count(*) AS total").
		Where("created_at >= ?", start).
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, storageErr("count weekly requests", err)
	}

	for _, row := range rows {
		report.NewRequests += row.Total

		switch row.Status {
		case model.StatusCompleted:
			report.Completed = row.Total
		case model.StatusRejected:
			report.Rejected = row.Total
		}
	}

	var top []weeklyResource
	err = db.Model(&model.ResourceRequest{}).
		Select("resource_url, count(*) AS requests, max(priority) AS priority").
		Where("created_at >= ?", start).
		Group("resource_url").
		Order("requests DESC").
		Order("resource_url ASC").
		Limit(reportTopResources).
		Scan(&top).
		Error
	if err != nil {
		return nil, storageErr("load weekly top resources", err)
	}

	for _, t := range top {
		report.TopResources = append(report.TopResources, email.ReportResource(t))
	}

	pending, err := r.GetPendingRequests(ctx, 5)
	if err != nil {
		return nil, err
	}

	for _, p := range pending {
		report.OldestPending = append(report.OldestPending, email.ReportRequest{
			ID:          p.ID,
			UserEmail:   p.UserEmail,
			ResourceURL: p.ResourceURL,
			Priority:    p.Priority,
			CreatedAt:   p.CreatedAt,
		})
	}

	return report, nil
}

// SendWeeklyReport builds the digest and mails it to the admin. Database
// failures are returned, a failed send only reports false.
func (r *ResourceRequests) SendWeeklyReport(ctx context.Context) (bool, error) {
	report, err := r.BuildWeeklyReport(ctx)
	if err != nil {
		return false, err
	}

	return r.notifier.SendWeeklyReport(ctx, *report), nil
}
