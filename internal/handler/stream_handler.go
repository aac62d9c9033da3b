package handler

import (
	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/internal/service"
	internalWS "magic-diary-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler upgrades clients to a websocket that streams a session's
// diary events.
type StreamHandler struct {
	sessionService service.ISessionService
	hub            *internalWS.Hub
	logger         logger.ILogger
}

func NewStreamHandler(sessionService service.ISessionService, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		sessionService: sessionService,
		hub:            hub,
		logger:         log,
	}
}

// ServeWs checks the session before upgrading so unknown IDs get a plain 404.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if !h.sessionService.Exists(sessionID) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("StreamHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *StreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/diary/v1/sessions/:id/ws", h.ServeWs)
}
