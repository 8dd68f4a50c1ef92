package signaling

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kendevco/discordant/internal/infrastructure/configs"
	"github.com/kendevco/discordant/internal/infrastructure/signaling"
)

type Handler struct {
	relay    *signaling.Relay
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

func NewHandler(relay *signaling.Relay, cfg configs.SignalingConfig, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		relay:  relay,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   64 << 10,
			WriteBufferSize:  64 << 10,
			HandshakeTimeout: cfg.HandshakeTimeout,
			// Browsers connect from the chat app origin; membership is
			// enforced by the join protocol, not the handshake.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ConnectHandler upgrades the request and hands the socket to the relay,
// which owns it until the client disconnects.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "remoteAddr", r.RemoteAddr, "error", err)
		return
	}

	query := r.URL.Query()
	h.relay.ServeConn(conn, query.Get("roomId"), query.Get("userId"))
}
