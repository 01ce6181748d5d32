package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jeffloic/artisan-showroom/internal/domain"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

type CartEventDTO struct {
	Type string `json:"type"`
	BadgeDTO
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin)
		},
	}
}

// CartEvents streams the badge after every cart mutation until the client
// disconnects or the session ends.
func (h *Handler) CartEvents(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan domain.CartSnapshot, 16)
	unsubscribe := s.Cart.Subscribe(func(snap domain.CartSnapshot) {
		select {
		case updates <- snap:
		default:
			h.logger.Debug("dropping cart event for slow client", "session_id", s.ID)
		}
	})
	defer unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	send := func(snap domain.CartSnapshot) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(CartEventDTO{Type: "cart", BadgeDTO: badgeOf(snap)})
	}

	if err := send(s.Cart.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case snap := <-updates:
			if err := send(snap); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-s.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(writeWait))
			return
		case <-gone:
			return
		}
	}
}
