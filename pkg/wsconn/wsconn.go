package wsconn

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a websocket connection with a write lock. gorilla/websocket
// permits only one concurrent writer per connection, and broadcasts fan out
// from many reader goroutines, so every outbound payload must go through
// WriteJSON here.
type Conn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func New(conn *websocket.Conn) *Conn {
	return &Conn{Conn: conn}
}

func (c *Conn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.Conn.WriteJSON(v)
}
