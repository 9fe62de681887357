package room

import (
	"context"
	"fmt"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/pkg/wsconn"
)

type JoinRoomParams struct {
	Conn     *wsconn.Conn
	RoomId   string
	Nickname string
}

type JoinRoomResponse struct {
	Nickname string
	Playing  bool
	Progress float64
	Conns    []*wsconn.Conn
}

// JoinRoom binds the connection to the room and bumps its occupancy. The
// bind happens before any later event from this connection is attributed to
// the room, and before the increment so a repeated join frame from the same
// connection cannot inflate the count.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if err := s.connRepo.Bind(params.Conn, params.RoomId); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to bind connection: %w", err)
	}

	rm, err := s.roomRepo.IncrementUserCount(ctx, params.RoomId)
	if err != nil {
		s.connRepo.Unbind(params.Conn)
		return JoinRoomResponse{}, fmt.Errorf("failed to increment user count: %w", err)
	}

	return JoinRoomResponse{
		Nickname: params.Nickname,
		Playing:  rm.Playing,
		Progress: rm.Progress,
		Conns:    s.connRepo.GetConns(params.RoomId),
	}, nil
}

type SendMessageParams struct {
	RoomId  string
	Author  string
	Content string
}

type SendMessageResponse struct {
	Message domain.ChatMessage
	Conns   []*wsconn.Conn
}

func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	rm, err := s.roomRepo.AddMessage(ctx, &room.AddMessageParams{
		RoomId:  params.RoomId,
		Author:  params.Author,
		Content: params.Content,
	})
	if err != nil {
		return SendMessageResponse{}, fmt.Errorf("failed to add message: %w", err)
	}

	return SendMessageResponse{
		Message: rm.Messages[len(rm.Messages)-1],
		Conns:   s.connRepo.GetConns(params.RoomId),
	}, nil
}

type ChangeVideoParams struct {
	RoomId   string
	VideoURL string
}

type ChangeVideoResponse struct {
	VideoURL string
	Conns    []*wsconn.Conn
}

// ChangeVideo swaps the room's video and rewinds progress to the start.
func (s service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) (ChangeVideoResponse, error) {
	rm, err := s.roomRepo.UpdateVideoURL(ctx, params.RoomId, params.VideoURL)
	if err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to update video url: %w", err)
	}

	if _, err := s.roomRepo.UpdateProgress(ctx, params.RoomId, 0); err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to reset progress: %w", err)
	}

	return ChangeVideoResponse{
		VideoURL: rm.VideoURL,
		Conns:    s.connRepo.GetConns(params.RoomId),
	}, nil
}

type UpdatePlaybackParams struct {
	RoomId   string
	Playing  bool
	Progress float64
}

type UpdatePlaybackResponse struct {
	Playing  bool
	Progress float64
	Conns    []*wsconn.Conn
}

func (s service) UpdatePlayback(ctx context.Context, params *UpdatePlaybackParams) (UpdatePlaybackResponse, error) {
	if _, err := s.roomRepo.UpdatePlaying(ctx, params.RoomId, params.Playing); err != nil {
		return UpdatePlaybackResponse{}, fmt.Errorf("failed to update playing: %w", err)
	}

	rm, err := s.roomRepo.UpdateProgress(ctx, params.RoomId, params.Progress)
	if err != nil {
		return UpdatePlaybackResponse{}, fmt.Errorf("failed to update progress: %w", err)
	}

	return UpdatePlaybackResponse{
		Playing:  rm.Playing,
		Progress: rm.Progress,
		Conns:    s.connRepo.GetConns(params.RoomId),
	}, nil
}

type SeekParams struct {
	RoomId string
	SeekTo float64
}

type SeekResponse struct {
	Progress float64
	Conns    []*wsconn.Conn
}

func (s service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	rm, err := s.roomRepo.UpdateProgress(ctx, params.RoomId, params.SeekTo)
	if err != nil {
		return SeekResponse{}, fmt.Errorf("failed to update progress: %w", err)
	}

	return SeekResponse{
		Progress: rm.Progress,
		Conns:    s.connRepo.GetConns(params.RoomId),
	}, nil
}

type ProgressParams struct {
	RoomId   string
	Progress float64
}

// Progress is the silent heartbeat. The state is synced, nothing is
// broadcast.
func (s service) Progress(ctx context.Context, params *ProgressParams) error {
	if _, err := s.roomRepo.UpdateProgress(ctx, params.RoomId, params.Progress); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	return nil
}

type DisconnectResponse struct {
	RoomId          string
	IsRoomDestroyed bool
}

// Disconnect unbinds the connection and decrements occupancy. The destroy
// check runs exactly once, on the post-decrement count; this is the only
// implicit destruction path. The count may dip below zero transiently, the
// check is <= 0 on purpose.
func (s service) Disconnect(ctx context.Context, conn *wsconn.Conn) (DisconnectResponse, error) {
	roomId, err := s.connRepo.Unbind(conn)
	if err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to unbind connection: %w", err)
	}

	rm, err := s.roomRepo.DecrementUserCount(ctx, roomId)
	if err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to decrement user count: %w", err)
	}

	if rm.UserCount <= 0 {
		if err := s.roomRepo.RemoveRoom(ctx, roomId); err != nil {
			return DisconnectResponse{}, fmt.Errorf("failed to remove room: %w", err)
		}

		return DisconnectResponse{RoomId: roomId, IsRoomDestroyed: true}, nil
	}

	return DisconnectResponse{RoomId: roomId}, nil
}
