package api

import (
	"Forwarder/internal/api/handler"
)

type HandlersGroup struct {
	PostHandler   *handler.PostHandler
	StatusHandler *handler.StatusHandler
	// WsHandler 未启用 ws 下游时为 nil
	WsHandler *handler.WsHandler
}
