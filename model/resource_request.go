// Package model defines database models
package model

import "time"

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusRejected   RequestStatus = "rejected"
)

var Statuses = []RequestStatus{StatusPending, StatusInProgress, StatusCompleted, StatusRejected}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}

	return false
}

// ResourceRequest is one lead submission for a resource
type ResourceRequest struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	ResourceURL string        `gorm:"not null;index" json:"resourceUrl"`
	UserEmail   string        `gorm:"not null;index" json:"userEmail"`
	Message     string        `gorm:"type:text" json:"message,omitempty"`
	SourceURL   string        `json:"sourceUrl"`
	Status      RequestStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	// 1 to 5, recomputed on every new request for the same resource
	Priority     int       `gorm:"not null;default:1;index" json:"priority"`
	RequestCount int64     `gorm:"not null;default:1" json:"requestCount"`
	CreatedAt    time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (ResourceRequest) TableName() string {
	return "resource_requests"
}
