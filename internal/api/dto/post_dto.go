package dto

import (
	"Forwarder/internal/model"
	"time"

	"github.com/jinzhu/copier"
)

// CreatePostDTO 帖子摄入请求，HTTP 与 Kafka 共用
type CreatePostDTO struct {
	ID        string     `json:"id" binding:"omitempty,max=128"`
	Title     string     `json:"title" binding:"required,notblank,max=255"`
	Content   string     `json:"content" binding:"required,notblank"`
	Author    string     `json:"author" binding:"required,notblank,max=128"`
	Timestamp *time.Time `json:"timestamp"`
	Priority  *int       `json:"priority" binding:"omitempty,min=1,max=5"`
}

func (d *CreatePostDTO) ToModel() *model.Post {
	post := &model.Post{
		ID:      d.ID,
		Title:   d.Title,
		Content: d.Content,
		Author:  d.Author,
	}
	if d.Timestamp != nil {
		post.Timestamp = *d.Timestamp
	}
	if d.Priority != nil {
		post.Priority = *d.Priority
	}
	return post
}

// PostDTO 帖子返回结构
type PostDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Timestamp   time.Time  `json:"timestamp"`
	Priority    int        `json:"priority"`
	Forwarded   bool       `json:"forwarded"`
	ForwardedAt *time.Time `json:"forwarded_at,omitempty"`
}

func ToPostDTO(post *model.Post) (*PostDTO, error) {
	out := &PostDTO{}
	if err := copier.Copy(out, post); err != nil {
		return nil, err
	}
	return out, nil
}

func ToPostDTOs(posts []*model.Post) ([]*PostDTO, error) {
	out := make([]*PostDTO, 0, len(posts))
	if err := copier.Copy(&out, &posts); err != nil {
		return nil, err
	}
	return out, nil
}

// IngestResultDTO 摄入结果
type IngestResultDTO struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PostID    string `json:"post_id"`
	Forwarded bool   `json:"forwarded"`
}
