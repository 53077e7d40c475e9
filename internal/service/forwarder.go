package service

import (
	"Forwarder/internal/model"
	"Forwarder/internal/repository"
	"context"
	stderrors "errors"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// Sink 下游投递目标
type Sink interface {
	Name() string
	Deliver(ctx context.Context, post *model.Post) error
}

// Outcome 单条帖子的转发结果
type Outcome int8

const (
	OutcomeForwarded Outcome = iota + 1
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type ForwardResult struct {
	PostID  string
	Outcome Outcome
	Post    *model.Post
	Err     error
}

type Forwarder interface {
	// ForwardNow 占用投递权后投递；已转发或正在投递的帖子直接跳过
	ForwardNow(ctx context.Context, id string) ForwardResult
	// ForwardClaimed 投递一条已经由调用方占用投递权的帖子
	ForwardClaimed(ctx context.Context, post *model.Post) ForwardResult
}

const defaultDeliveryTimeout = 10 * time.Second

type forwarderImpl struct {
	store   repository.PostStore
	sink    Sink
	timeout time.Duration
	sem     *semaphore.Weighted
	now     func() time.Time
}

func NewForwarder(store repository.PostStore, sink Sink, timeout time.Duration, maxInFlight int) Forwarder {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &forwarderImpl{
		store:   store,
		sink:    sink,
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(maxInFlight)),
		now:     time.Now,
	}
}

func (s *forwarderImpl) ForwardNow(ctx context.Context, id string) ForwardResult {
	post, err := s.store.Claim(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrAlreadyForwarded) || stderrors.Is(err, repository.ErrInFlight) {
			return ForwardResult{PostID: id, Outcome: OutcomeSkipped}
		}
		if stderrors.Is(err, repository.ErrNotFound) {
			err = ErrPostNotFound
		}
		return ForwardResult{PostID: id, Outcome: OutcomeFailed, Err: err}
	}
	return s.ForwardClaimed(ctx, post)
}

func (s *forwarderImpl) ForwardClaimed(ctx context.Context, post *model.Post) ForwardResult {
	if err := s.deliver(ctx, post); err != nil {
		s.store.Release(ctx, post.ID)
		log.WarnContext(ctx, "forward post failed, left pending for next sweep",
			"post_id", post.ID, "sink", s.sink.Name(), "err", err)
		return ForwardResult{PostID: post.ID, Outcome: OutcomeFailed, Post: post, Err: err}
	}

	done, appended, err := s.store.Complete(ctx, post.ID, s.now())
	if err != nil {
		return ForwardResult{PostID: post.ID, Outcome: OutcomeFailed, Post: post, Err: err}
	}
	if !appended {
		return ForwardResult{PostID: post.ID, Outcome: OutcomeSkipped, Post: done}
	}

	log.InfoContext(ctx, "post forwarded", "post_id", post.ID, "sink", s.sink.Name())
	return ForwardResult{PostID: post.ID, Outcome: OutcomeForwarded, Post: done}
}

func (s *forwarderImpl) deliver(ctx context.Context, post *model.Post) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(ErrDeliveryFailed, err.Error())
	}
	defer s.sem.Release(1)

	deliverCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sink.Deliver(deliverCtx, post); err != nil {
		return errors.Wrapf(ErrDeliveryFailed, "sink %s: %v", s.sink.Name(), err)
	}
	return nil
}
