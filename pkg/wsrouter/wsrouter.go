package wsrouter

import (
	"context"
	"encoding/json"

	"github.com/watchparty/server/pkg/wsconn"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage)

// WSRouter dispatches inbound websocket messages by their type tag. The set
// of routes is closed after setup; a message with an unknown tag is answered
// with an error frame and otherwise ignored.
type WSRouter struct {
	routes map[string]HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// ServeConn reads messages until the connection fails and routes each one.
// The read error that ends the loop is returned so the caller can run its
// disconnect cleanup.
func (r *WSRouter) ServeConn(ctx context.Context, conn *wsconn.Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		if handler, exists := r.routes[msg.Type]; exists {
			handler(ctx, conn, msg.Payload)
		} else {
			conn.WriteJSON(map[string]string{"error": "unknown message type"})
		}
	}
}
