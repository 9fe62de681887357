package controller

import (
	"github.com/watchparty/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle("joinRoom", c.handleJoinRoom)
	mux.Handle("newMessage", c.handleNewMessage)
	mux.Handle("changeVideo", c.handleChangeVideo)
	mux.Handle("videoPlayingChanged", c.handleVideoPlayingChanged)
	mux.Handle("videoSeeked", c.handleVideoSeeked)
	mux.Handle("playingProgress", c.handlePlayingProgress)

	return mux
}
