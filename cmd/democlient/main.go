package main

import (
	"Forwarder/internal/api/dto"
	"context"
	"errors"
	"flag"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// 演示客户端：默认执行一轮接口检查，continuous 模式每隔一段时间发送一条帖子
func main() {
	baseURL := flag.String("url", "http://localhost:8000", "forwarder service url")
	interval := flag.Duration("interval", 30*time.Second, "interval between posts in continuous mode")
	flag.Parse()

	log.SetDefault(log.New(log.NewTextHandler(os.Stdout, nil)))

	c := newClient(*baseURL)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	if flag.Arg(0) == "continuous" {
		err = c.continuous(ctx, *interval)
	} else {
		err = c.walkthrough(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("demo failed", "url", *baseURL, "err", err)
		os.Exit(1)
	}
}

type client struct {
	http *resty.Client
}

func newClient(baseURL string) *client {
	return &client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second).
			SetJSONMarshaler(json.Marshal).
			SetJSONUnmarshaler(json.Unmarshal),
	}
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func get[T any](ctx context.Context, c *client, path string) (T, error) {
	var out envelope[T]
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(path)
	if err != nil {
		return out.Data, err
	}
	if resp.IsError() {
		return out.Data, fmt.Errorf("GET %s: %s", path, resp.Status())
	}
	return out.Data, nil
}

func (c *client) send(ctx context.Context, post dto.CreatePostDTO) (dto.IngestResultDTO, error) {
	var out envelope[dto.IngestResultDTO]
	resp, err := c.http.R().SetContext(ctx).SetBody(post).SetResult(&out).Post("/posts")
	if err != nil {
		return out.Data, err
	}
	if resp.IsError() {
		return out.Data, fmt.Errorf("POST /posts: %s %s", resp.Status(), resp.String())
	}
	return out.Data, nil
}

func (c *client) walkthrough(ctx context.Context) error {
	status, err := get[dto.StatusDTO](ctx, c, "/")
	if err != nil {
		return err
	}
	log.Info("service is running", "status", status.Status, "posts", status.PostsCount, "forwarded", status.ForwardedCount)

	health, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	log.Info("health check", "status", health.Status())

	for _, p := range samplePosts() {
		res, err := c.send(ctx, p)
		if err != nil {
			return err
		}
		log.Info("post sent", "title", p.Title, "post_id", res.PostID, "forwarded", res.Forwarded)
	}

	posts, err := get[[]dto.PostDTO](ctx, c, "/posts")
	if err != nil {
		return err
	}
	for _, p := range posts {
		log.Info("post", "id", p.ID, "title", p.Title, "priority", p.Priority, "forwarded", p.Forwarded)
	}

	forwarded, err := get[[]dto.PostDTO](ctx, c, "/posts/forwarded")
	if err != nil {
		return err
	}
	log.Info("walkthrough finished", "posts", len(posts), "forwarded", len(forwarded))
	return nil
}

func (c *client) continuous(ctx context.Context, interval time.Duration) error {
	log.Info("sending posts continuously, press Ctrl+C to stop", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for counter := 1; ; counter++ {
		p := rotatingPost(counter)
		if res, err := c.send(ctx, p); err != nil {
			log.Error("send post failed", "title", p.Title, "err", err)
		} else {
			log.Info("post sent", "title", p.Title, "post_id", res.PostID, "forwarded", res.Forwarded)
		}

		select {
		case <-ctx.Done():
			log.Info("stopped continuous post generation")
			return nil
		case <-ticker.C:
		}
	}
}

func intPtr(v int) *int { return &v }

func samplePosts() []dto.CreatePostDTO {
	return []dto.CreatePostDTO{
		{Title: "Daily Update", Content: "This is a regular daily update post", Author: "Content Manager", Priority: intPtr(2)},
		{Title: "Urgent System Alert", Content: "This is an urgent system alert that requires immediate attention", Author: "System Administrator", Priority: intPtr(5)},
		{Title: "Breaking News Alert", Content: "This is breaking news about an important development", Author: "News Reporter", Priority: intPtr(3)},
	}
}

func rotatingPost(counter int) dto.CreatePostDTO {
	kinds := []dto.CreatePostDTO{
		{Title: fmt.Sprintf("Regular Update #%d", counter), Content: fmt.Sprintf("This is regular update number %d", counter), Author: "Auto Generator", Priority: intPtr(1)},
		{Title: fmt.Sprintf("Important Notice #%d", counter), Content: fmt.Sprintf("This is an important notice number %d", counter), Author: "System", Priority: intPtr(3)},
		{Title: fmt.Sprintf("Urgent Alert #%d", counter), Content: fmt.Sprintf("This is urgent alert number %d", counter), Author: "Alert System", Priority: intPtr(5)},
	}
	return kinds[counter%len(kinds)]
}
