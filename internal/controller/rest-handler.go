package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	roomRepo "github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/rest"
)

func (c *controller) getRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.roomService.GetRooms(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to get rooms", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"rooms": rooms})
}

type createRoomRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	VideoURL string `json:"videoUrl" validate:"required"`
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.DebugContext(r.Context(), "invalid create room request", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	rm, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Name:     req.Name,
		VideoURL: req.VideoURL,
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	c.metrics.roomsActive.Inc()
	c.logger.InfoContext(r.Context(), "room created", "room_id", rm.Id)

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"room": rm})
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	rm, err := c.roomService.GetRoom(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"room": rm})
}
