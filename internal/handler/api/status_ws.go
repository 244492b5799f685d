package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"xfin/internal/scheduler"
	"xfin/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// StatusHandler streams run-status snapshots over a websocket. Each connected
// client gets the current snapshot on connect, then one message per status
// change.
type StatusHandler struct {
	statuses *scheduler.StatusStore
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewStatusHandler(statuses *scheduler.StatusStore, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		statuses: statuses,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/status", h.stream)
}

func (h *StatusHandler) stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	id, updates := h.statuses.Subscribe()
	defer h.statuses.Unsubscribe(id)

	// Drain client frames so close handshakes are noticed. We never expect
	// payloads from the client.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, h.statuses.All()); err != nil {
		return nil
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := h.write(conn, snap); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *StatusHandler) write(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(v); err != nil {
		h.log.Debug("status stream write failed", logger.Error(err))
		return err
	}
	return nil
}
