package room

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrRoomFull        = errors.New("room is full")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNotHost         = errors.New("only the host can do that")
)
