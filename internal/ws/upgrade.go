package ws

import (
	"log"
	"net/http"
	"time"

	"automarket/config"
	"automarket/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UnreadCounter reports a user's unread notification count.
type UnreadCounter interface {
	UnreadCount(userID uint) (int64, error)
}

// UpgradeNotificationsWS authenticates via ?token=, registers the session on the
// hub and sends the current unread count before streaming notifications.
func UpgradeNotificationsWS(cfg *config.JWTConfig, hub *Hub, counter UnreadCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		client := NewClient(claims.UserID)
		hub.Register(client)
		defer client.Close()

		if counter != nil {
			if n, err := counter.UnreadCount(claims.UserID); err == nil {
				hub.SendToUser(claims.UserID, gin.H{"type": "unread_count", "count": n})
			}
		}
		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection and pings every 30s.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames until the connection closes.
func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
