package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/middleware"
)

// Handler upgrades an authenticated dashboard connection. Must run behind
// the session guard.
func Handler(hub *NotificationHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime not available"})
			return
		}
		cur := middleware.Current(c)
		if cur == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		cl := newClient(hub, conn, cur.User.ID.String())
		hub.register <- cl

		go cl.writePump()
		cl.readPump()
	}
}
