package messages

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kendevco/discordant/internal/domain"
	"github.com/kendevco/discordant/internal/infrastructure/json"
	"github.com/kendevco/discordant/internal/orchestrator"
)

type Handler struct {
	orchestrator *orchestrator.Orchestrator
}

func NewHandler(orchestrator *orchestrator.Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
	}
}

// CreateSystemMessageHandler accepts one user chat message and drives it to
// its terminal system reply. The response is the terminal message: a direct
// completion for sync routes, or the processing placeholder for async routes.
func (h *Handler) CreateSystemMessageHandler(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelId")
	if channelID == "" {
		json.WriteValidationError(w, errors.New("channel ID is missing"))
		return
	}

	var req createSystemMessageRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if req.Content == "" {
		json.WriteValidationError(w, errors.New("content is required"))
		return
	}

	msg, err := h.orchestrator.Handle(r.Context(), orchestrator.Request{
		ChannelID:     channelID,
		Content:       req.Content,
		FileURL:       req.FileURL,
		AuthorName:    req.MemberName,
		UserMessageID: req.MessageID,
		AsIs:          req.AsIs,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			json.WriteValidationError(w, err)
		case errors.Is(err, domain.ErrChannelNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Channel not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusCreated, createSystemMessageResponse{Message: msg})
}
