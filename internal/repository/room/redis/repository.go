package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/room"
)

const roomIndexKey = "rooms"

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) roomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) messagesKey(roomId string) string {
	return "room:" + roomId + ":messages"
}

const txRetries = 3

// mutateRoom applies fn inside a transaction that watches the room index, so
// a concurrent RemoveRoom aborts the mutation instead of resurrecting the
// room hash after the membership check. Aborted transactions are retried.
func (r repo) mutateRoom(ctx context.Context, roomId string, fn func(pipe redis.Pipeliner) error) error {
	txFn := func(tx *redis.Tx) error {
		ok, err := tx.SIsMember(ctx, roomIndexKey, roomId).Result()
		if err != nil {
			return err
		}
		if !ok {
			return room.ErrRoomNotFound
		}

		_, err = tx.TxPipelined(ctx, fn)

		return err
	}

	for i := 0; i < txRetries; i++ {
		err := r.rc.Watch(ctx, txFn, roomIndexKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return err
	}

	return redis.TxFailedErr
}

func (r repo) getRoom(ctx context.Context, roomId string) (domain.Room, error) {
	fields, err := r.rc.HGetAll(ctx, r.roomKey(roomId)).Result()
	if err != nil {
		return domain.Room{}, err
	}
	if len(fields) == 0 {
		return domain.Room{}, room.ErrRoomNotFound
	}

	raw, err := r.rc.LRange(ctx, r.messagesKey(roomId), 0, -1).Result()
	if err != nil {
		return domain.Room{}, err
	}

	messages := make([]domain.ChatMessage, 0, len(raw))
	for _, entry := range raw {
		var message domain.ChatMessage
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			return domain.Room{}, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, message)
	}

	return domain.Room{
		Id:        roomId,
		Name:      fields["name"],
		VideoURL:  fields["video_url"],
		Playing:   fieldToBool(fields["playing"]),
		Progress:  fieldToFloat64(fields["progress"]),
		UserCount: fieldToInt(fields["user_count"]),
		Messages:  messages,
	}, nil
}

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) (domain.Room, error) {
	roomId := uuid.NewString()

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, r.roomKey(roomId), map[string]any{
		"name":       params.Name,
		"video_url":  params.VideoURL,
		"playing":    boolToField(false),
		"progress":   0,
		"user_count": 0,
	})
	pipe.SAdd(ctx, roomIndexKey, roomId)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Room{}, err
	}

	return domain.Room{
		Id:       roomId,
		Name:     params.Name,
		VideoURL: params.VideoURL,
		Messages: []domain.ChatMessage{},
	}, nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	return r.getRoom(ctx, roomId)
}

func (r repo) GetRooms(ctx context.Context) ([]domain.Room, error) {
	roomIds, err := r.rc.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]domain.Room, 0, len(roomIds))
	for _, roomId := range roomIds {
		rm, err := r.getRoom(ctx, roomId)
		if err != nil {
			// a room removed between SMEMBERS and HGETALL is not an error
			if errors.Is(err, room.ErrRoomNotFound) {
				continue
			}
			return nil, err
		}
		rooms = append(rooms, rm)
	}

	return rooms, nil
}

func (r repo) AddMessage(ctx context.Context, params *room.AddMessageParams) (domain.Room, error) {
	entry, err := json.Marshal(domain.ChatMessage{
		Author:  params.Author,
		Content: params.Content,
	})
	if err != nil {
		return domain.Room{}, fmt.Errorf("marshal message: %w", err)
	}

	err = r.mutateRoom(ctx, params.RoomId, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.messagesKey(params.RoomId), entry)
		return nil
	})
	if err != nil {
		return domain.Room{}, err
	}

	return r.getRoom(ctx, params.RoomId)
}

func (r repo) UpdateVideoURL(ctx context.Context, roomId string, videoURL string) (domain.Room, error) {
	return r.updateField(ctx, roomId, "video_url", videoURL)
}

func (r repo) UpdatePlaying(ctx context.Context, roomId string, playing bool) (domain.Room, error) {
	return r.updateField(ctx, roomId, "playing", boolToField(playing))
}

func (r repo) UpdateProgress(ctx context.Context, roomId string, progress float64) (domain.Room, error) {
	return r.updateField(ctx, roomId, "progress", progress)
}

func (r repo) updateField(ctx context.Context, roomId string, field string, value any) (domain.Room, error) {
	err := r.mutateRoom(ctx, roomId, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.roomKey(roomId), field, value)
		return nil
	})
	if err != nil {
		return domain.Room{}, err
	}

	return r.getRoom(ctx, roomId)
}

func (r repo) IncrementUserCount(ctx context.Context, roomId string) (domain.Room, error) {
	return r.adjustUserCount(ctx, roomId, 1)
}

func (r repo) DecrementUserCount(ctx context.Context, roomId string) (domain.Room, error) {
	return r.adjustUserCount(ctx, roomId, -1)
}

func (r repo) adjustUserCount(ctx context.Context, roomId string, delta int64) (domain.Room, error) {
	err := r.mutateRoom(ctx, roomId, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, r.roomKey(roomId), "user_count", delta)
		return nil
	})
	if err != nil {
		return domain.Room{}, err
	}

	return r.getRoom(ctx, roomId)
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	pipe := r.rc.TxPipeline()
	pipe.SRem(ctx, roomIndexKey, roomId)
	pipe.Del(ctx, r.roomKey(roomId), r.messagesKey(roomId))
	_, err := pipe.Exec(ctx)

	return err
}

func (r repo) RemoveAllRooms(ctx context.Context) error {
	roomIds, err := r.rc.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()
	for _, roomId := range roomIds {
		pipe.Del(ctx, r.roomKey(roomId), r.messagesKey(roomId))
	}
	pipe.Del(ctx, roomIndexKey)
	_, err = pipe.Exec(ctx)

	return err
}
