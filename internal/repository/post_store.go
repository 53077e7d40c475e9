package repository

import (
	"Forwarder/internal/model"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrNotFound         = errors.New("post not found")
	ErrDuplicateID      = errors.New("post id already exists")
	ErrAlreadyForwarded = errors.New("post already forwarded")
	ErrInFlight         = errors.New("post delivery in progress")
)

// PostStore 帖子的内存存储，持有全部帖子与已转发帖子两个有序集合。
// forwarded 状态只通过 Claim / Complete / Release 迁移。
type PostStore interface {
	// Create 分配 id 与时间戳后追加；claim 为 true 时在同一临界区内占用投递权
	Create(ctx context.Context, post *model.Post, claim bool) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context) []*model.Post
	ListForwarded(ctx context.Context) []*model.Post
	ListUnforwarded(ctx context.Context) []*model.Post
	Stats(ctx context.Context) model.PostStats

	// Claim 占用一条未转发帖子的投递权
	Claim(ctx context.Context, id string) (*model.Post, error)
	// Complete 标记已转发并追加到已转发集合；重复调用不会产生重复记录
	Complete(ctx context.Context, id string, at time.Time) (*model.Post, bool, error)
	// Release 投递失败时释放投递权，帖子保持未转发
	Release(ctx context.Context, id string)
}

type memPostStore struct {
	mu        sync.RWMutex
	seq       atomic.Uint64
	now       func() time.Time
	posts     []*model.Post
	index     map[string]*model.Post
	forwarded []*model.Post
	inFlight  map[string]struct{}
}

func NewPostStore() PostStore {
	return newPostStore(time.Now)
}

func newPostStore(now func() time.Time) *memPostStore {
	return &memPostStore{
		now:      now,
		index:    make(map[string]*model.Post),
		inFlight: make(map[string]struct{}),
	}
}

func (s *memPostStore) Create(_ context.Context, post *model.Post, claim bool) (*model.Post, error) {
	record := post.Clone()
	record.Forwarded = false
	record.ForwardedAt = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if record.ID == "" {
		record.ID = s.nextID(now)
	} else if _, ok := s.index[record.ID]; ok {
		return nil, ErrDuplicateID
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = now
	}

	s.posts = append(s.posts, record)
	s.index[record.ID] = record
	if claim {
		s.inFlight[record.ID] = struct{}{}
	}
	return record.Clone(), nil
}

// nextID 调用方需持有写锁；调用方自带的 id 可能与生成格式撞车，因此循环直到唯一
func (s *memPostStore) nextID(now time.Time) string {
	for {
		id := fmt.Sprintf("post_%d_%d", s.seq.Add(1), now.Unix())
		if _, ok := s.index[id]; !ok {
			return id
		}
	}
}

func (s *memPostStore) Get(_ context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *memPostStore) List(_ context.Context) []*model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.posts, nil)
}

func (s *memPostStore) ListForwarded(_ context.Context) []*model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.forwarded, nil)
}

func (s *memPostStore) ListUnforwarded(_ context.Context) []*model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.posts, func(p *model.Post) bool { return !p.Forwarded })
}

func (s *memPostStore) Stats(_ context.Context) model.PostStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.PostStats{
		Total:     len(s.posts),
		Forwarded: len(s.forwarded),
		Pending:   len(s.posts) - len(s.forwarded),
	}
}

func (s *memPostStore) Claim(_ context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Forwarded {
		return nil, ErrAlreadyForwarded
	}
	if _, busy := s.inFlight[id]; busy {
		return nil, ErrInFlight
	}
	s.inFlight[id] = struct{}{}
	return p.Clone(), nil
}

func (s *memPostStore) Complete(_ context.Context, id string, at time.Time) (*model.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.index[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	delete(s.inFlight, id)
	if p.Forwarded {
		return p.Clone(), false, nil
	}

	p.Forwarded = true
	p.ForwardedAt = &at
	s.forwarded = append(s.forwarded, p)
	return p.Clone(), true, nil
}

func (s *memPostStore) Release(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func snapshot(src []*model.Post, keep func(*model.Post) bool) []*model.Post {
	out := make([]*model.Post, 0, len(src))
	for _, p := range src {
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
