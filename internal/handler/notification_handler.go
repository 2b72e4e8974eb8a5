package handler

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/logger"
	internalWS "luni-triage-be/internal/websocket"
)

// NotificationHandler owns the websocket handshake for assessment pushes.
// Authenticated callers pass their JWT in the "token" query param; guests
// pass their device id in "guest_id".
type NotificationHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewNotificationHandler(hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/notifications", h.ServeWs)
}

func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	scope, err := h.resolveScope(c)
	if err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		scopeKey := scope.Key()
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "WebSocket session started", map[string]interface{}{"scope": scopeKey})
			internalWS.ServeWs(h.hub, conn, scopeKey)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"scope": scopeKey})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *NotificationHandler) resolveScope(c *fiber.Ctx) (entity.Scope, error) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr != "" {
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			h.logger.Warn("NotificationHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
			return entity.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return entity.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			return entity.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "token missing user_id")
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return entity.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
		}
		return entity.UserScope(userID), nil
	}

	guestId := c.Query("guest_id")
	if guestId == "" {
		return entity.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "missing token or guest_id")
	}
	return entity.GuestScope(guestId), nil
}
