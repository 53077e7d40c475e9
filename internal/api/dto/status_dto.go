package dto

import "time"

type StatusDTO struct {
	Message        string `json:"message"`
	Status         string `json:"status"`
	PostsCount     int    `json:"posts_count"`
	ForwardedCount int    `json:"forwarded_count"`
	PendingCount   int    `json:"pending_count"`
	SweepRunning   bool   `json:"sweep_running"`
}

type HealthDTO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
