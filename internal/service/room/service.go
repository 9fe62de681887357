package room

import (
	"context"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/pkg/wsconn"
)

type IRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (domain.Room, error)
	GetRoom(ctx context.Context, roomId string) (domain.Room, error)
	GetRooms(context.Context) ([]domain.Room, error)
	AddMessage(context.Context, *room.AddMessageParams) (domain.Room, error)
	UpdateVideoURL(ctx context.Context, roomId string, videoURL string) (domain.Room, error)
	UpdatePlaying(ctx context.Context, roomId string, playing bool) (domain.Room, error)
	UpdateProgress(ctx context.Context, roomId string, progress float64) (domain.Room, error)
	IncrementUserCount(ctx context.Context, roomId string) (domain.Room, error)
	DecrementUserCount(ctx context.Context, roomId string) (domain.Room, error)
	RemoveRoom(ctx context.Context, roomId string) error
	RemoveAllRooms(context.Context) error
}

type iConnRepo interface {
	Bind(conn *wsconn.Conn, roomId string) error
	Unbind(conn *wsconn.Conn) (string, error)
	GetConns(roomId string) []*wsconn.Conn
}

type service struct {
	roomRepo IRoomRepo
	connRepo iConnRepo
}

func NewService(roomRepo IRoomRepo, connRepo iConnRepo) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
	}
}
