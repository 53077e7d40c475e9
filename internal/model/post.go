package model

import (
	"time"
)

// Disposition 帖子分类结果
type Disposition int8

const (
	Deferred Disposition = iota
	Immediate
)

func (d Disposition) String() string {
	switch d {
	case Immediate:
		return "immediate"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Post 一条待转发的帖子；forwarded 只能从 false 变为 true 一次
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Timestamp   time.Time  `json:"timestamp"`
	Priority    int        `json:"priority"`
	Forwarded   bool       `json:"forwarded"`
	ForwardedAt *time.Time `json:"forwarded_at,omitempty"`
}

// Clone 返回一份独立副本，读接口只暴露副本
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	out := *p
	if p.ForwardedAt != nil {
		at := *p.ForwardedAt
		out.ForwardedAt = &at
	}
	return &out
}

// PostStats 帖子计数
type PostStats struct {
	Total     int `json:"total"`
	Forwarded int `json:"forwarded"`
	Pending   int `json:"pending"`
}
