package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mayankshukla2904/nagrik-backend/internal/dashhub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeDashboard upgrades the connection and attaches it to the event hub.
// Browsers cannot set headers on websocket dials, so the token is also
// accepted as a query parameter.
func (h *Handler) ServeDashboard(c *gin.Context) {
	tokenString := ""
	if authHeader := c.GetHeader("Authorization"); len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
		tokenString = authHeader[7:]
	} else {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	if _, _, err := parseToken(tokenString); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := dashhub.NewWebSocketClient(conn, h.Hub)
	// The hub starts the client's pumps once it is registered.
	h.Hub.RegisterCh <- client
}
