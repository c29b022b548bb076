package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"floorlink/internal/domain"
)

// PointerMessage is a client pointer event in screen pixels. Type is
// "down", "move", "up", "cancel" or "origin" (sets the document origin).
type PointerMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PointerReply answers down and up messages.
type PointerReply struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Hit   bool   `json:"hit,omitempty"`
	Error string `json:"error,omitempty"`
}

const pointerReadTimeout = 2 * time.Minute

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PointerSocket upgrades to a websocket and feeds pointer messages to the
// drag machine in arrival order. A drag still in progress when the socket
// closes is abandoned, not committed.
func (h *Handler) PointerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Pointer socket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	remote := conn.RemoteAddr().String()
	log.Printf("Pointer socket connected: %s", remote)
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h.svc.PointerCancel(cctx)
		log.Printf("Pointer socket disconnected: %s", remote)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(pointerReadTimeout))
		var msg PointerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Pointer socket %s: %v", remote, err)
			}
			return
		}

		reply, send := h.handlePointer(ctx, msg)
		if !send {
			continue
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (h *Handler) handlePointer(ctx context.Context, msg PointerMessage) (PointerReply, bool) {
	p := domain.Pt(msg.X, msg.Y)
	reply := PointerReply{Type: msg.Type}
	var err error

	switch msg.Type {
	case "down":
		reply.ID, reply.Hit, err = h.svc.PointerDown(ctx, p)
	case "move":
		// Moves are fire-and-forget; only failures are reported.
		_, err = h.svc.PointerMove(ctx, p)
		if err == nil {
			return reply, false
		}
	case "up":
		reply.Hit, err = h.svc.PointerUp(ctx)
	case "cancel":
		err = h.svc.PointerCancel(ctx)
	case "origin":
		err = h.svc.SetOrigin(ctx, p)
	default:
		reply.Type = "error"
		reply.Error = "unknown message type " + msg.Type
		return reply, true
	}
	if err != nil {
		reply.Type = "error"
		reply.Error = err.Error()
	}
	return reply, true
}
