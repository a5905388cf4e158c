package model

import "time"

// ResourceCounter keeps the cumulative demand for a resource. Rows
// outlive the requests themselves, cleanup doesn't touch them.
type ResourceCounter struct {
	ResourceURL      string    `gorm:"primaryKey" json:"resourceUrl"`
	Count            int64     `gorm:"not null;default:0" json:"requestCount"`
	Priority         int       `gorm:"not null;default:1" json:"priority"`
	FirstRequestedAt time.Time `gorm:"not null" json:"firstRequestedAt"`
	LastRequestedAt  time.Time `gorm:"not null;index" json:"lastRequestedAt"`
}

func (ResourceCounter) TableName() string {
	return "resource_counters"
}
