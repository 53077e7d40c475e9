package api

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/api/dto"
	"Forwarder/internal/api/handler"
	"Forwarder/internal/job"
	"Forwarder/internal/model"
	"Forwarder/internal/pkg/util"
	"Forwarder/internal/repository"
	"Forwarder/internal/service"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type switchSink struct {
	fail atomic.Bool
}

func (s *switchSink) Name() string { return "switch" }

func (s *switchSink) Deliver(context.Context, *model.Post) error {
	if s.fail.Load() {
		return errors.New("down")
	}
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *switchSink) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := util.RegisterGinValidators(); err != nil {
		t.Fatalf("RegisterGinValidators() error = %v", err)
	}

	sink := &switchSink{}
	store := repository.NewPostStore()
	fwd := service.NewForwarder(store, sink, time.Second, 4)
	postSvc := service.NewPostService(store, service.NewClassifier(config.ClassifierConfig{}), fwd)
	sweep := job.NewForwardSweepJob(postSvc, fwd)

	group := &HandlersGroup{
		PostHandler:   handler.NewPostHandler(postSvc),
		StatusHandler: handler.NewStatusHandler(postSvc, sweep),
	}
	return SetupRouter(group, "forwarder-test"), sink
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func createPost(t *testing.T, r http.Handler, body string) dto.IngestResultDTO {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/posts", body)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /posts status = %d body = %s", w.Code, w.Body.String())
	}
	var res dto.IngestResultDTO
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode ingest result: %v", err)
	}
	return res
}

func TestCreatePostDispositions(t *testing.T) {
	r, _ := newTestRouter(t)

	deferred := createPost(t, r, `{"title":"Daily Update","content":"regular update","author":"ops","priority":2}`)
	if !deferred.Success || deferred.Forwarded || deferred.PostID == "" {
		t.Fatalf("deferred result %+v", deferred)
	}

	urgent := createPost(t, r, `{"title":"Urgent System Alert","content":"maintenance","author":"ops","priority":5}`)
	if !urgent.Forwarded {
		t.Fatalf("urgent result %+v", urgent)
	}

	keyword := createPost(t, r, `{"title":"Breaking News Alert","content":"announcement","author":"ops","priority":3}`)
	if !keyword.Forwarded {
		t.Fatalf("keyword result %+v", keyword)
	}

	w, env := do(t, r, http.MethodGet, "/posts/pending", "")
	var pending []dto.PostDTO
	_ = json.Unmarshal(env.Data, &pending)
	if w.Code != http.StatusOK || len(pending) != 1 || pending[0].ID != deferred.PostID {
		t.Fatalf("pending = %+v", pending)
	}

	_, env = do(t, r, http.MethodGet, "/posts/forwarded", "")
	var forwarded []dto.PostDTO
	_ = json.Unmarshal(env.Data, &forwarded)
	if len(forwarded) != 2 || forwarded[0].ID != urgent.PostID || forwarded[1].ID != keyword.PostID {
		t.Fatalf("forwarded = %+v", forwarded)
	}
}

func TestCreatePostValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []string{
		`{"content":"c","author":"a"}`,
		`{"title":"   ","content":"c","author":"a"}`,
		`{"title":"t","content":"c","author":"a","priority":6}`,
		`{"title":"t","content":"c","author":"a","priority":0}`,
		`{"title":"t","content":"c","author":"a","priority":"high"}`,
		`{"title":"t","content":"c","author":"a","timestamp":"yesterday"}`,
		`not json`,
	}
	for _, body := range cases {
		w, env := do(t, r, http.MethodPost, "/posts", body)
		if w.Code != http.StatusUnprocessableEntity || env.Code != http.StatusUnprocessableEntity {
			t.Fatalf("POST %s status = %d body = %s", body, w.Code, w.Body.String())
		}
	}
}

func TestCreatePostKeepsCallerFields(t *testing.T) {
	r, _ := newTestRouter(t)

	res := createPost(t, r, `{"id":"ext-1","title":"t","content":"c","author":"a","timestamp":"2025-03-01T12:00:00Z"}`)
	if res.PostID != "ext-1" {
		t.Fatalf("post id = %s", res.PostID)
	}

	w, env := do(t, r, http.MethodGet, "/posts/ext-1", "")
	var post dto.PostDTO
	_ = json.Unmarshal(env.Data, &post)
	if w.Code != http.StatusOK || post.Priority != 1 || !post.Timestamp.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("post = %+v", post)
	}

	w, _ = do(t, r, http.MethodPost, "/posts", `{"id":"ext-1","title":"t","content":"c","author":"a"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", w.Code)
	}
}

func TestGetPostNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodGet, "/posts/missing", "")
	if w.Code != http.StatusNotFound || env.Message != "Post not found" {
		t.Fatalf("status = %d message = %q", w.Code, env.Message)
	}
}

func TestSweepAndStatus(t *testing.T) {
	r, sink := newTestRouter(t)

	sink.fail.Store(true)
	failed := createPost(t, r, `{"title":"urgent","content":"c","author":"a","priority":5}`)
	if failed.Forwarded {
		t.Fatal("forwarded while sink down")
	}
	createPost(t, r, `{"title":"t","content":"c","author":"a"}`)

	_, env := do(t, r, http.MethodGet, "/", "")
	var status dto.StatusDTO
	_ = json.Unmarshal(env.Data, &status)
	if status.Status != "active" || status.PostsCount != 2 || status.ForwardedCount != 0 {
		t.Fatalf("status = %+v", status)
	}

	sink.fail.Store(false)
	w, env := do(t, r, http.MethodPost, "/sweep", "")
	var summary job.SweepSummary
	_ = json.Unmarshal(env.Data, &summary)
	if w.Code != http.StatusOK || summary.Succeeded != 2 || summary.TotalForwarded != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	_, env = do(t, r, http.MethodGet, "/posts", "")
	var all []dto.PostDTO
	_ = json.Unmarshal(env.Data, &all)
	for _, p := range all {
		if !p.Forwarded || p.ForwardedAt == nil {
			t.Fatalf("post %s not forwarded after sweep", p.ID)
		}
	}
}

func TestHealthAndTrace(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "trace-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var health dto.HealthDTO
	_ = json.Unmarshal(w.Body.Bytes(), &health)
	if w.Code != http.StatusOK || health.Status != "healthy" {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Trace-ID"); got != "trace-abc" {
		t.Fatalf("trace header = %q", got)
	}
}
