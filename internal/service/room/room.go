package room

import (
	"context"
	"fmt"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/room"
)

type CreateRoomParams struct {
	Name     string
	VideoURL string
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (domain.Room, error) {
	rm, err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
		Name:     params.Name,
		VideoURL: params.VideoURL,
	})
	if err != nil {
		return domain.Room{}, fmt.Errorf("failed to create room: %w", err)
	}

	return rm, nil
}

func (s service) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	return s.roomRepo.GetRoom(ctx, roomId)
}

func (s service) GetRooms(ctx context.Context) ([]domain.Room, error) {
	return s.roomRepo.GetRooms(ctx)
}

// RemoveAllRooms resets the store. Administrative use only.
func (s service) RemoveAllRooms(ctx context.Context) error {
	return s.roomRepo.RemoveAllRooms(ctx)
}
