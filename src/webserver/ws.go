package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/stake-plus/robot-comms/src/world"
)

type LiveUpdates struct {
	reg      *world.Registry
	upgrader websocket.Upgrader
}

func NewLiveUpdates(reg *world.Registry) *LiveUpdates {
	return &LiveUpdates{
		reg: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades the request and registers the connection with the
// named store instance. Events are pushed by the store's writer; the read
// loop here only notices the disconnect.
func (h *LiveUpdates) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	store := h.reg.Get(c.Param("instance"))
	id := store.Subscribe(conn)
	defer func() {
		store.Unsubscribe(id)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
