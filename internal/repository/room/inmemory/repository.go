package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/room"
)

type repo struct {
	rooms map[string]*domain.Room
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms: make(map[string]*domain.Room),
	}
}

// snapshot copies a room so callers never share the message slice with the
// store.
func (r *repo) snapshot(rm *domain.Room) domain.Room {
	copied := *rm
	copied.Messages = slices.Clone(rm.Messages)
	return copied
}

func (r *repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := &domain.Room{
		Id:        uuid.NewString(),
		Name:      params.Name,
		VideoURL:  params.VideoURL,
		Playing:   false,
		Progress:  0,
		UserCount: 0,
		Messages:  []domain.ChatMessage{},
	}
	r.rooms[rm.Id] = rm

	return r.snapshot(rm), nil
}

func (r *repo) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	return r.snapshot(rm), nil
}

func (r *repo) GetRooms(ctx context.Context) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, r.snapshot(rm))
	}

	return rooms, nil
}

func (r *repo) AddMessage(ctx context.Context, params *room.AddMessageParams) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[params.RoomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	rm.Messages = append(rm.Messages, domain.ChatMessage{
		Author:  params.Author,
		Content: params.Content,
	})

	return r.snapshot(rm), nil
}

func (r *repo) UpdateVideoURL(ctx context.Context, roomId string, videoURL string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	rm.VideoURL = videoURL

	return r.snapshot(rm), nil
}

func (r *repo) UpdatePlaying(ctx context.Context, roomId string, playing bool) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	rm.Playing = playing

	return r.snapshot(rm), nil
}

func (r *repo) UpdateProgress(ctx context.Context, roomId string, progress float64) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	rm.Progress = progress

	return r.snapshot(rm), nil
}

func (r *repo) IncrementUserCount(ctx context.Context, roomId string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	rm.UserCount++

	return r.snapshot(rm), nil
}

// DecrementUserCount does not clamp at zero. The "destroy when empty" check
// belongs to the service and uses the post-decrement count.
func (r *repo) DecrementUserCount(ctx context.Context, roomId string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomId]
	if !ok {
		return domain.Room{}, room.ErrRoomNotFound
	}

	rm.UserCount--

	return r.snapshot(rm), nil
}

func (r *repo) RemoveRoom(ctx context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomId)

	return nil
}

func (r *repo) RemoveAllRooms(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms = make(map[string]*domain.Room)

	return nil
}
