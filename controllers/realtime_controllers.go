package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type RealtimeController struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts handshakes from allowedOrigin, or from anywhere when it is "*" or empty.
func NewRealtimeController(h *hub.Hub, allowedOrigin string) *RealtimeController {
	return &RealtimeController{
		hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Serve -> GET /ws?token=
func (rc *RealtimeController) Serve(c *gin.Context) {
	_, role, _ := middlewares.CurrentUser(c)
	if role != middlewares.RoleAdmin && role != middlewares.RoleStaff {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	rc.hub.Register(ws, role)
	defer rc.hub.Unregister(ws)

	// clients only listen; reading keeps control frames flowing until they leave
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
