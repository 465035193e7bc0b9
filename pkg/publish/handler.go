package publish

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// CheckOrigin validates the handshake origin.
	// Default: same-origin check from gorilla/websocket.
	CheckOrigin func(r *http.Request) bool

	// ReadTimeout closes idle connections. Zero disables it.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing one reply (default: 10s).
	WriteTimeout time.Duration

	// Logger receives connection and subscriber errors.
	// Default: slog.Default().
	Logger *slog.Logger
}

// Handler serves the publish protocol. Each request is passed to the
// subscriber and answered on the same connection, in order.
type Handler struct {
	sub      Subscriber
	config   HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler creates a handler delivering requests to sub. Bus.Publish is
// the usual subscriber.
func NewHandler(sub Subscriber, configs ...HandlerConfig) *Handler {
	var config HandlerConfig
	if len(configs) > 0 {
		config = configs[0]
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Handler{
		sub:    sub,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
	}
}

// ServeHTTP upgrades the connection and serves requests until the client
// disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.config.Logger.Warn("publish upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	for {
		if h.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
		}
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.config.Logger.Warn("publish connection closed", slog.Any("error", err))
			}
			return
		}

		reply := h.handle(req)
		conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			h.config.Logger.Warn("publish reply failed", slog.Any("error", err))
			return
		}
	}
}

func (h *Handler) handle(req Request) Reply {
	reply := Reply{ID: req.ID}
	result, err := h.sub(req.Event, contextFromParams(req.Params))
	if err != nil {
		h.config.Logger.Error("subscriber failed",
			slog.String("event", req.Event),
			slog.Any("error", err))
		reply.Error = err.Error()
		return reply
	}
	if result == nil {
		return reply
	}
	data, err := json.Marshal(result)
	if err != nil {
		reply.Error = "result not encodable: " + err.Error()
		return reply
	}
	reply.Result = data
	return reply
}
