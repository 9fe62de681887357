package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/watchparty/server/pkg/wsconn"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// decode unmarshals a payload into its typed input and validates it.
func (c *controller) decode(payload json.RawMessage, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if validationErrors, ok := c.validate.Validate(dst); !ok {
		return fmt.Errorf("invalid payload: %v", validationErrors)
	}

	return nil
}

func (c *controller) writeToConn(ctx context.Context, conn *wsconn.Conn, output *Output) error {
	return conn.WriteJSON(output)
}

// broadcast fans a payload out to every conn in the list. Delivery is best
// effort: a failed write is logged and the loop moves on, so one dead peer
// never starves the rest.
func (c *controller) broadcast(ctx context.Context, conns []*wsconn.Conn, output *Output) {
	for _, conn := range conns {
		if err := conn.WriteJSON(output); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "type", output.Type, "error", err)
			continue
		}
		c.metrics.broadcasts.Inc()
	}
}
