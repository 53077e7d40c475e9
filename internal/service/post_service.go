package service

import (
	"Forwarder/internal/model"
	"Forwarder/internal/pkg/consts"
	"Forwarder/internal/repository"
	"context"
	"errors"
	log "log/slog"
)

type PostService interface {
	Ingest(ctx context.Context, post *model.Post) (*model.Post, error)
	GetPostById(ctx context.Context, postID string) (*model.Post, error)
	ListPosts(ctx context.Context) []*model.Post
	ListForwardedPosts(ctx context.Context) []*model.Post
	ListPendingPosts(ctx context.Context) []*model.Post
	Stats(ctx context.Context) model.PostStats
}

type postServiceImpl struct {
	store      repository.PostStore
	classifier Classifier
	forwarder  Forwarder
}

func NewPostService(store repository.PostStore, classifier Classifier, forwarder Forwarder) PostService {
	return &postServiceImpl{
		store:      store,
		classifier: classifier,
		forwarder:  forwarder,
	}
}

// Ingest 入库并分类，紧急帖子在返回前同步转发。
// 立即转发失败不会报错，返回的帖子 forwarded 为 false，等待下一次清扫。
func (s *postServiceImpl) Ingest(ctx context.Context, post *model.Post) (*model.Post, error) {
	if post == nil {
		return nil, ErrParamInvalid
	}
	if post.Priority == 0 {
		post.Priority = consts.DefaultPriority
	}

	disposition := s.classifier.Classify(post)
	stored, err := s.store.Create(ctx, post, disposition == model.Immediate)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, ErrPostExists
		}
		return nil, err
	}
	log.InfoContext(ctx, "received new post",
		"post_id", stored.ID, "title", stored.Title, "priority", stored.Priority, "disposition", disposition.String())

	if disposition == model.Deferred {
		log.InfoContext(ctx, "post queued for batch forwarding", "post_id", stored.ID)
		return stored, nil
	}

	// 请求取消不应中断已经开始的投递
	res := s.forwarder.ForwardClaimed(context.WithoutCancel(ctx), stored)
	if res.Outcome == OutcomeForwarded && res.Post != nil {
		return res.Post, nil
	}

	latest, err := s.store.Get(ctx, stored.ID)
	if err != nil {
		return stored, nil
	}
	return latest, nil
}

func (s *postServiceImpl) GetPostById(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.store.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postServiceImpl) ListPosts(ctx context.Context) []*model.Post {
	return s.store.List(ctx)
}

func (s *postServiceImpl) ListForwardedPosts(ctx context.Context) []*model.Post {
	return s.store.ListForwarded(ctx)
}

func (s *postServiceImpl) ListPendingPosts(ctx context.Context) []*model.Post {
	return s.store.ListUnforwarded(ctx)
}

func (s *postServiceImpl) Stats(ctx context.Context) model.PostStats {
	return s.store.Stats(ctx)
}
