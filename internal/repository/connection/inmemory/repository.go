package inmemory

import (
	"sync"

	"github.com/watchparty/server/internal/repository/connection"
	"github.com/watchparty/server/pkg/wsconn"
)

// repo tracks which room each live connection is bound to. A connection
// binds at most once, on join, and stays bound until it disconnects.
type repo struct {
	connList map[*wsconn.Conn]string
	roomList map[string]map[*wsconn.Conn]struct{}
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*wsconn.Conn]string),
		roomList: make(map[string]map[*wsconn.Conn]struct{}),
	}
}

func (r *repo) Bind(conn *wsconn.Conn, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connList[conn]; ok {
		return connection.ErrAlreadyBound
	}

	r.connList[conn] = roomId

	conns, ok := r.roomList[roomId]
	if !ok {
		conns = make(map[*wsconn.Conn]struct{})
		r.roomList[roomId] = conns
	}
	conns[conn] = struct{}{}

	return nil
}

func (r *repo) Unbind(conn *wsconn.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotBound
	}

	delete(r.connList, conn)

	if conns, ok := r.roomList[roomId]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.roomList, roomId)
		}
	}

	return roomId, nil
}

func (r *repo) GetRoomId(conn *wsconn.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotBound
	}

	return roomId, nil
}

func (r *repo) GetConns(roomId string) []*wsconn.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*wsconn.Conn, 0, len(r.roomList[roomId]))
	for conn := range r.roomList[roomId] {
		conns = append(conns, conn)
	}

	return conns
}
