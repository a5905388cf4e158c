package email

import (
	"bitwise74/leads-api/priority"
	"time"
)

type ResourceRequestEmail struct {
	RequestID    string
	UserEmail    string
	ResourceURL  string
	SourceURL    string
	Message      string
	Priority     int
	RequestCount int64
	CreatedAt    time.Time
}

type AuditAlertEmail struct {
	ResourceRequestEmail
	Factors []priority.Factor
}

type AutoResponseEmail struct {
	UserEmail   string
	ResourceURL string
	RequestID   string
}

type ReportResource struct {
	ResourceURL string
	Requests    int64
	Priority    int
}

type ReportRequest struct {
	ID          string
	UserEmail   string
	ResourceURL string
	Priority    int
	CreatedAt   time.Time
}

type WeeklyReportEmail struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	NewRequests     int64
	Completed       int64
	Rejected        int64
	PendingTotal    int64
	HighPriority    int64
	UniqueResources int64
	TopResources    []ReportResource
	OldestPending   []ReportRequest
}
