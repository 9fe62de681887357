package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/watchparty/server/internal/repository/connection"
	"github.com/watchparty/server/pkg/ctxlogger"
	"github.com/watchparty/server/pkg/wsconn"
)

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	rawConn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := wsconn.New(rawConn)

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", uuid.NewString()))
	defer c.disconnect(ctx, conn)

	c.logger.InfoContext(ctx, "connection opened", "remote_addr", conn.RemoteAddr().String())

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

// disconnect runs once per connection, whether or not it ever joined a room.
func (c *controller) disconnect(ctx context.Context, conn *wsconn.Conn) {
	resp, err := c.roomService.Disconnect(ctx, conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotBound) {
			c.logger.DebugContext(ctx, "disconnect without join")
			return
		}

		c.logger.InfoContext(ctx, "failed to disconnect", "error", err)
		return
	}

	if resp.IsRoomDestroyed {
		c.metrics.roomsActive.Dec()
		c.logger.InfoContext(ctx, "room destroyed", "room_id", resp.RoomId)
	}
}
