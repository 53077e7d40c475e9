package repository

import (
	"Forwarder/internal/model"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestCreateAssignsIDAndTimestamp(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()

	got, err := s.Create(ctx, &model.Post{Title: "a", Content: "b", Author: "c", Priority: 2}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected generated id")
	}
	if !got.Timestamp.Equal(fixedClock()()) {
		t.Errorf("timestamp = %v, want clock time", got.Timestamp)
	}
	if got.Forwarded {
		t.Error("new post must not be forwarded")
	}
}

func TestCreateKeepsCallerFields(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := s.Create(ctx, &model.Post{ID: "custom", Title: "t", Timestamp: ts, Forwarded: true}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "custom" || !got.Timestamp.Equal(ts) {
		t.Errorf("caller id/timestamp not kept: %+v", got)
	}
	if got.Forwarded {
		t.Error("caller cannot create an already forwarded post")
	}

	if _, err = s.Create(ctx, &model.Post{ID: "custom"}, false); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id err = %v, want ErrDuplicateID", err)
	}
}

func TestCreateConcurrentIDsUnique(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()

	const n = 500
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Create(ctx, &model.Post{Title: "t"}, false)
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- p.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
	if len(s.List(ctx)) != n {
		t.Errorf("list len = %d, want %d", len(s.List(ctx)), n)
	}
}

func TestGeneratedIDSkipsCallerCollision(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()
	taken := "post_1_" + "1740830400"

	if _, err := s.Create(ctx, &model.Post{ID: taken}, false); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Create(ctx, &model.Post{}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == taken {
		t.Fatalf("generated id collided with caller id %s", taken)
	}
}

func TestListOrderAndSnapshots(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, &model.Post{Title: title}, false); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all := s.List(ctx)
	if all[0].Title != "first" || all[2].Title != "third" {
		t.Fatalf("insertion order lost: %v, %v", all[0].Title, all[2].Title)
	}

	all[0].Title = "mutated"
	if s.List(ctx)[0].Title != "first" {
		t.Error("List must return copies")
	}
}

func TestClaimCompleteRelease(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()
	p, _ := s.Create(ctx, &model.Post{Title: "t"}, false)

	if _, err := s.Claim(ctx, p.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := s.Claim(ctx, p.ID); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second claim err = %v, want ErrInFlight", err)
	}

	s.Release(ctx, p.ID)
	if _, err := s.Claim(ctx, p.ID); err != nil {
		t.Fatalf("claim after release: %v", err)
	}

	done, ok, err := s.Complete(ctx, p.ID, fixedClock()())
	if err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	if !done.Forwarded || done.ForwardedAt == nil {
		t.Errorf("completed post not marked: %+v", done)
	}
	if _, err := s.Claim(ctx, p.ID); !errors.Is(err, ErrAlreadyForwarded) {
		t.Errorf("claim forwarded err = %v, want ErrAlreadyForwarded", err)
	}
	if _, err := s.Claim(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("claim missing err = %v, want ErrNotFound", err)
	}
}

func TestCreateWithClaimBlocksOtherClaims(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()
	p, _ := s.Create(ctx, &model.Post{Title: "urgent"}, true)

	if _, err := s.Claim(ctx, p.ID); !errors.Is(err, ErrInFlight) {
		t.Fatalf("claim err = %v, want ErrInFlight", err)
	}
}

// Complete 绕过 Claim 并发调用，已转发集合中最多只出现一次
func TestCompleteRaceAppendsOnce(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()
	p, _ := s.Create(ctx, &model.Post{Title: "t"}, false)

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	appended := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.Complete(ctx, p.ID, time.Now())
			if err != nil {
				t.Errorf("complete: %v", err)
				return
			}
			if ok {
				mu.Lock()
				appended++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if appended != 1 {
		t.Errorf("appended = %d, want 1", appended)
	}
	if got := len(s.ListForwarded(ctx)); got != 1 {
		t.Errorf("forwarded len = %d, want 1", got)
	}
}

func TestForwardedIsMonotonicAndConsistent(t *testing.T) {
	s := newPostStore(fixedClock())
	ctx := context.Background()
	a, _ := s.Create(ctx, &model.Post{Title: "a"}, false)
	b, _ := s.Create(ctx, &model.Post{Title: "b"}, false)

	_, _, _ = s.Complete(ctx, b.ID, time.Now())
	_, _, _ = s.Complete(ctx, a.ID, time.Now())
	s.Release(ctx, a.ID)

	fwd := s.ListForwarded(ctx)
	if len(fwd) != 2 || fwd[0].ID != b.ID || fwd[1].ID != a.ID {
		t.Fatalf("forwarded order wrong: %+v", fwd)
	}
	for _, p := range fwd {
		stored, err := s.Get(ctx, p.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !stored.Forwarded || stored.Title != p.Title || !stored.Timestamp.Equal(p.Timestamp) {
			t.Errorf("forwarded entry differs from stored record: %+v vs %+v", p, stored)
		}
	}
	if pending := s.ListUnforwarded(ctx); len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}

	stats := s.Stats(ctx)
	if stats.Total != 2 || stats.Forwarded != 2 || stats.Pending != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetUnknown(t *testing.T) {
	s := NewPostStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
