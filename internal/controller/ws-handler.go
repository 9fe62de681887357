package controller

import (
	"context"
	"encoding/json"

	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/wsconn"
)

// Every handler follows the same policy: decode and validate the payload,
// apply the mutation, broadcast the result. Failures are logged and dropped;
// nothing propagates back to the peer or to other connections.

type JoinRoomInput struct {
	RoomId   string `json:"roomId" validate:"required"`
	Nickname string `json:"nickname" validate:"required,max=32"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) {
	c.metrics.wsEvents.WithLabelValues("joinRoom").Inc()

	var input JoinRoomInput
	if err := c.decode(payload, &input); err != nil {
		c.logger.DebugContext(ctx, "invalid joinRoom payload", "error", err)
		return
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		Conn:     conn,
		RoomId:   input.RoomId,
		Nickname: input.Nickname,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to join room", "room_id", input.RoomId, "error", err)
		return
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "videoState",
		Payload: map[string]any{
			"progress": joinRoomResp.Progress,
			"playing":  joinRoomResp.Playing,
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to send video state", "error", err)
	}

	c.broadcast(ctx, joinRoomResp.Conns, &Output{
		Type: "newUserJoined",
		Payload: map[string]any{
			"nickname": joinRoomResp.Nickname,
		},
	})
}

type NewMessageInput struct {
	RoomId  string `json:"roomId" validate:"required"`
	Message struct {
		Author  string `json:"author" validate:"required"`
		Content string `json:"content" validate:"required"`
	} `json:"message"`
}

func (c *controller) handleNewMessage(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) {
	c.metrics.wsEvents.WithLabelValues("newMessage").Inc()

	var input NewMessageInput
	if err := c.decode(payload, &input); err != nil {
		c.logger.DebugContext(ctx, "invalid newMessage payload", "error", err)
		return
	}

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomId:  input.RoomId,
		Author:  input.Message.Author,
		Content: input.Message.Content,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to send message", "room_id", input.RoomId, "error", err)
		return
	}

	c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type:    "newMessage",
		Payload: sendMessageResp.Message,
	})
}

type ChangeVideoInput struct {
	RoomId   string `json:"roomId" validate:"required"`
	VideoURL string `json:"videoUrl" validate:"required"`
}

func (c *controller) handleChangeVideo(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) {
	c.metrics.wsEvents.WithLabelValues("changeVideo").Inc()

	var input ChangeVideoInput
	if err := c.decode(payload, &input); err != nil {
		c.logger.DebugContext(ctx, "invalid changeVideo payload", "error", err)
		return
	}

	changeVideoResp, err := c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		RoomId:   input.RoomId,
		VideoURL: input.VideoURL,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to change video", "room_id", input.RoomId, "error", err)
		return
	}

	c.broadcast(ctx, changeVideoResp.Conns, &Output{
		Type:    "videoChanged",
		Payload: changeVideoResp.VideoURL,
	})
}

type VideoPlayingChangedInput struct {
	RoomId   string  `json:"roomId" validate:"required"`
	Playing  bool    `json:"playing"`
	Progress float64 `json:"progress"`
}

func (c *controller) handleVideoPlayingChanged(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) {
	c.metrics.wsEvents.WithLabelValues("videoPlayingChanged").Inc()

	var input VideoPlayingChangedInput
	if err := c.decode(payload, &input); err != nil {
		c.logger.DebugContext(ctx, "invalid videoPlayingChanged payload", "error", err)
		return
	}

	updatePlaybackResp, err := c.roomService.UpdatePlayback(ctx, &room.UpdatePlaybackParams{
		RoomId:   input.RoomId,
		Playing:  input.Playing,
		Progress: input.Progress,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to update playback", "room_id", input.RoomId, "error", err)
		return
	}

	c.broadcast(ctx, updatePlaybackResp.Conns, &Output{
		Type: "videoPlayingChanged",
		Payload: map[string]any{
			"playing":  updatePlaybackResp.Playing,
			"progress": updatePlaybackResp.Progress,
		},
	})
}

type VideoSeekedInput struct {
	RoomId string  `json:"roomId" validate:"required"`
	SeekTo float64 `json:"seekTo"`
}

func (c *controller) handleVideoSeeked(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) {
	c.metrics.wsEvents.WithLabelValues("videoSeeked").Inc()

	var input VideoSeekedInput
	if err := c.decode(payload, &input); err != nil {
		c.logger.DebugContext(ctx, "invalid videoSeeked payload", "error", err)
		return
	}

	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		RoomId: input.RoomId,
		SeekTo: input.SeekTo,
	})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to seek", "room_id", input.RoomId, "error", err)
		return
	}

	c.broadcast(ctx, seekResp.Conns, &Output{
		Type:    "videoSeeked",
		Payload: seekResp.Progress,
	})
}

type PlayingProgressInput struct {
	RoomId   string  `json:"roomId" validate:"required"`
	Progress float64 `json:"progress"`
}

func (c *controller) handlePlayingProgress(ctx context.Context, conn *wsconn.Conn, payload json.RawMessage) {
	c.metrics.wsEvents.WithLabelValues("playingProgress").Inc()

	var input PlayingProgressInput
	if err := c.decode(payload, &input); err != nil {
		c.logger.DebugContext(ctx, "invalid playingProgress payload", "error", err)
		return
	}

	if err := c.roomService.Progress(ctx, &room.ProgressParams{
		RoomId:   input.RoomId,
		Progress: input.Progress,
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to update progress", "room_id", input.RoomId, "error", err)
	}
}
