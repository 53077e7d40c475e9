package service

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/model"
	"strings"
)

// Classifier 决定帖子立即转发还是等待批量清扫，必须是纯函数
type Classifier interface {
	Classify(post *model.Post) model.Disposition
}

type keywordClassifier struct {
	threshold int
	keywords  []string
}

// NewClassifier 阈值非正或关键词为空时回落到默认规则
func NewClassifier(cfg config.ClassifierConfig) Classifier {
	threshold := cfg.PriorityThreshold
	if threshold <= 0 {
		threshold = config.DefaultPriorityThreshold
	}

	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = append(keywords, config.DefaultKeywords...)
	}

	return &keywordClassifier{
		threshold: threshold,
		keywords:  keywords,
	}
}

func (s *keywordClassifier) Classify(post *model.Post) model.Disposition {
	if post.Priority >= s.threshold {
		return model.Immediate
	}

	title := strings.ToLower(post.Title)
	content := strings.ToLower(post.Content)
	for _, kw := range s.keywords {
		if strings.Contains(title, kw) || strings.Contains(content, kw) {
			return model.Immediate
		}
	}
	return model.Deferred
}
