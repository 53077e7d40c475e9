package handler

import (
	"Forwarder/internal/api/dto"
	"Forwarder/internal/job"
	"Forwarder/internal/pkg/consts"
	"Forwarder/internal/pkg/response"
	"Forwarder/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	postSvc  service.PostService
	sweepJob *job.ForwardSweepJob
}

func NewStatusHandler(postSvc service.PostService, sweepJob *job.ForwardSweepJob) *StatusHandler {
	return &StatusHandler{
		postSvc:  postSvc,
		sweepJob: sweepJob,
	}
}

// Status 服务状态与计数
func (s *StatusHandler) Status(c *gin.Context) {
	stats := s.postSvc.Stats(c.Request.Context())
	response.Success(c, dto.StatusDTO{
		Message:        consts.ServiceRunningMessage,
		Status:         "active",
		PostsCount:     stats.Total,
		ForwardedCount: stats.Forwarded,
		PendingCount:   stats.Pending,
		SweepRunning:   s.sweepJob.Running(),
	})
}

// Health 探活，不走统一封装
func (s *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthDTO{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// Sweep 手动触发一次清扫；已有清扫在运行时返回 dropped
func (s *StatusHandler) Sweep(c *gin.Context) {
	summary := s.sweepJob.Sweep(context.WithoutCancel(c.Request.Context()))
	response.Success(c, summary)
}
