package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an upgraded connection to the hub for a scope.
func ServeWs(hub *Hub, c *websocket.Conn, scopeKey string) {
	client := &Client{Hub: hub, Conn: c, ScopeKey: scopeKey, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // blocks for the connection lifetime
}
