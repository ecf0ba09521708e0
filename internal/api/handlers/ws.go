package handlers

import (
	"net/http"

	ws "go-zettelkasten/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ConnectWebSocket upgrades the request and registers the connection for
// import-progress notifications. The connection is read from only to
// detect the close.
func ConnectWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &ws.Client{UserID: currentUserID(c), Conn: conn}
	manager := ws.GetManager()
	manager.RegisterClient(client)

	go func() {
		defer func() {
			manager.UnregisterClient(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
