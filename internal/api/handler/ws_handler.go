package handler

import (
	"Forwarder/internal/pkg/ws"

	"github.com/gin-gonic/gin"
)

type WsHandler struct {
	hub *ws.Hub
}

func NewWsHandler(hub *ws.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 订阅已转发帖子的实时推送
func (s *WsHandler) Connect(c *gin.Context) {
	s.hub.ServeWS(c)
}
