package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtime upgrades the connection and streams change-feed events for
// the requested collections. The token travels as a query parameter because
// browser websocket clients cannot set headers.
func (h *Handler) handleRealtime(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.QueryParam("token")
	if _, err := auth.GetUserIDFromToken(token, []byte(h.config.SecretKey)); err != nil {
		return writeError(c, err)
	}

	var collections []string
	if raw := c.QueryParam("collections"); raw != "" {
		collections = strings.Split(raw, ",")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error(ctx, "websocket upgrade failed", "error", err)
		return err
	}
	defer ws.Close()

	events, cancel := h.hub.Subscribe(common.DefaultWorkspace, collections)
	defer cancel()

	// Reader goroutine: its only job is to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(ev); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
