package connection

import "errors"

var (
	ErrNotBound     = errors.New("connection not bound to a room")
	ErrAlreadyBound = errors.New("connection already bound to a room")
)
