package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const localTopics = "ws_topics"

// UpgradeMiddleware rejects plain HTTP requests and parses the optional
// ?topics=attendance,alert subscription before the upgrade.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		topics, err := ParseTopics(c.Query("topics"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		c.Locals(localTopics, topics)
		return c.Next()
	}
}

// Handler streams hub events to an upgraded connection.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		topics, _ := conn.Locals(localTopics).(Topics)
		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, sendBuffer),
			topics: topics,
		}

		if !hub.join(client) {
			_ = conn.Close()
			return
		}

		go client.writeLoop()
		client.readLoop()
	})
}
