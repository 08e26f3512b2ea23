package models

import "time"

// RateLimitRecord counts requests from one client address to one endpoint in a fixed window.
// While BlockedUntil lies in the future every request from the pair is rejected.
type RateLimitRecord struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	IPAddress    string     `gorm:"column:ip_address;type:text;not null;uniqueIndex:idx_rate_limits_ip_endpoint" json:"ip_address"`
	Endpoint     string     `gorm:"column:endpoint;size:255;not null;uniqueIndex:idx_rate_limits_ip_endpoint" json:"endpoint"`
	RequestCount int        `gorm:"column:request_count;not null" json:"request_count"`
	WindowStart  time.Time  `gorm:"column:window_start;not null" json:"window_start"`
	BlockedUntil *time.Time `gorm:"column:blocked_until" json:"blocked_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName overrides the gorm table name.
func (RateLimitRecord) TableName() string {
	return "rate_limits"
}

// NewRateLimitRecord starts a window for the pair with a single counted request.
func NewRateLimitRecord(ip, endpoint string, now time.Time) *RateLimitRecord {
	return &RateLimitRecord{
		IPAddress:    ip,
		Endpoint:     endpoint,
		RequestCount: 1,
		WindowStart:  now,
	}
}

// WindowExpired reports whether the window that started at WindowStart has elapsed.
func (r *RateLimitRecord) WindowExpired(now time.Time, window time.Duration) bool {
	return now.Sub(r.WindowStart) > window
}

// IsBlocked reports whether a block is in force at now.
func (r *RateLimitRecord) IsBlocked(now time.Time) bool {
	return r.BlockedUntil != nil && r.BlockedUntil.After(now)
}

// ResetWindow starts a fresh window at now with one counted request and no block.
func (r *RateLimitRecord) ResetWindow(now time.Time) {
	r.RequestCount = 1
	r.WindowStart = now
	r.BlockedUntil = nil
}

//Personal.AI order the ending
