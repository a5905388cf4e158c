package model

import "time"

// RateCounter is a fixed window hit counter. WindowStart is a unix
// timestamp so it compares the same way on every driver.
type RateCounter struct {
	Bucket      string    `gorm:"primaryKey;size:320"`
	WindowStart int64     `gorm:"primaryKey;autoIncrement:false"`
	Count       int64     `gorm:"not null;default:0"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (RateCounter) TableName() string {
	return "rate_counters"
}
