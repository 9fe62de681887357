package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/validator"
	"github.com/watchparty/server/pkg/wsconn"
	"github.com/watchparty/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (domain.Room, error)
	GetRoom(ctx context.Context, roomId string) (domain.Room, error)
	GetRooms(context.Context) ([]domain.Room, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	ChangeVideo(context.Context, *room.ChangeVideoParams) (room.ChangeVideoResponse, error)
	UpdatePlayback(context.Context, *room.UpdatePlaybackParams) (room.UpdatePlaybackResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	Progress(context.Context, *room.ProgressParams) error
	Disconnect(ctx context.Context, conn *wsconn.Conn) (room.DisconnectResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
	metrics     *metrics
}

func NewController(roomService iRoomService, logger *slog.Logger, reg prometheus.Registerer) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
		metrics:     newMetrics(reg),
	}
	c.wsmux = c.getWSRouter()

	return c
}
