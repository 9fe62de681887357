package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)

	r.Get("/api/rooms", c.getRooms)
	r.Post("/api/rooms", c.createRoom)
	r.Get("/api/rooms/{room-id}", c.getRoom)

	r.HandleFunc("/ws", c.serveWS)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
