package controller

import (
	"net/http"

	"github.com/cwd-comments/cwd-backend/internal/middleware"
	ws "github.com/cwd-comments/cwd-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSController 관리자 실시간 피드
type WSController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewWSController(hub *ws.Hub, allowedOrigins []string) *WSController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WSController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Origin 없는 요청은 브라우저가 아님
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleWebSocket 인증된 관리자를 Hub 에 등록
// GET /admin/ws?token=
func (ctrl *WSController) HandleWebSocket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	name, _ := middleware.GetAdminName(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade connection", err, map[string]interface{}{
			"admin": name,
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, name)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
