package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/flashcard-maker/internal/review"
)

const (
	// writeWait bounds one websocket write.
	writeWait = 10 * time.Second
	// pongWait is how long a silent client is kept.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps client frames; clients only send control frames.
	maxMessageSize = 512
	// sendBuffer is the per-client backlog before snapshots are dropped.
	sendBuffer = 16
)

// subscriber is one websocket connection watching one tab.
type subscriber struct {
	tabID int
	conn  *websocket.Conn
	send  chan []byte
}

// PanelHub fans panel snapshots out to websocket subscribers of the panel's
// tab. Publish is a review.Notifier.
type PanelHub struct {
	host     TabHost
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[int]map[*subscriber]struct{}
}

// NewPanelHub creates a hub. host supplies the current snapshot for new
// subscribers.
func NewPanelHub(host TabHost, logger *slog.Logger) *PanelHub {
	return &PanelHub{
		host:   host,
		logger: logger.With("component", "panel_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     isLocalOrigin,
		},
		subs: make(map[int]map[*subscriber]struct{}),
	}
}

// isLocalOrigin accepts requests without an Origin header and those from a
// loopback host.
func isLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Publish sends snap to every subscriber of its tab. Slow subscribers miss
// snapshots rather than block the panel.
func (h *PanelHub) Publish(snap review.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("failed to encode panel snapshot", "error", err, "tab_id", snap.TabID)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[snap.TabID] {
		if !s.offer(data) {
			h.logger.Warn("subscriber backlog full, dropping snapshot",
				"tab_id", snap.TabID,
				"version", snap.Version)
		}
	}
}

// Subscribers reports how many connections watch tabID.
func (h *PanelHub) Subscribers(tabID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tabID])
}

func (h *PanelHub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[s.tabID] == nil {
		h.subs[s.tabID] = make(map[*subscriber]struct{})
	}
	h.subs[s.tabID][s] = struct{}{}
}

func (h *PanelHub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.tabID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.send)
	if len(set) == 0 {
		delete(h.subs, s.tabID)
	}
}

// ServeWS handles GET /ws/tabs/{id}. The current snapshot, if the tab has a
// panel, is sent first.
func (h *PanelHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathInt(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if _, err := h.host.Tab(tabID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the response.
		h.logger.Debug("websocket upgrade failed", "error", err, "tab_id", tabID)
		return
	}

	s := &subscriber{tabID: tabID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(s)
	h.logger.Debug("panel subscriber connected", "tab_id", tabID)

	// The pumps start after this so send cannot be closed underneath us.
	if page, err := h.host.Page(tabID); err == nil {
		if p, ok := review.PanelFor(page); ok {
			if data, err := json.Marshal(p.Snapshot()); err == nil && !s.offer(data) {
				h.logger.Warn("subscriber backlog full, dropping initial snapshot", "tab_id", tabID)
			}
		}
	}

	go h.writePump(s)
	go h.readPump(s)
}

// offer queues data without blocking and reports whether it was queued.
func (s *subscriber) offer(data []byte) bool {
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// readPump discards client frames and unregisters on disconnect.
func (h *PanelHub) readPump(s *subscriber) {
	defer func() {
		h.unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("panel subscriber read error", "error", err, "tab_id", s.tabID)
			}
			return
		}
	}
}

func (h *PanelHub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
