package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Heartbeat interval for version checks. Clients refetch rankings only
	// when a version changes, at most once per heartbeat.
	versionHeartbeatInterval = 2 * time.Second

	// Buffered messages per client before updates are skipped
	sendBuffer = 16

	// MessageTypeVersion is the type of every hub message
	MessageTypeVersion = "VERSION_UPDATE"
)

// VersionSource reads the counters bumped when results are stored.
type VersionSource interface {
	GlobalVersion(ctx context.Context) (int64, error)
	Version(ctx context.Context, groupID string) (int64, error)
}

// Client represents a WebSocket client connection. A client with a group
// follows that group's version; otherwise it follows the global version.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	group string
}

// Hub maintains the set of active clients and broadcasts version changes
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	versions VersionSource
	log      *zap.Logger

	mu sync.RWMutex

	// last version sent per group; "" is the global version
	lastVersions  map[string]int64
	lastGlobal    int64
	heartbeatTick time.Duration
}

// VersionUpdate represents the version heartbeat message
type VersionUpdate struct {
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	Version int64  `json:"version"`
}

// NewHub creates a new WebSocket hub
func NewHub(versions VersionSource, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		versions:      versions,
		log:           log.Named("websocket"),
		lastVersions:  make(map[string]int64),
		heartbeatTick: versionHeartbeatInterval,
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("WebSocket hub started")

	versionTicker := time.NewTicker(h.heartbeatTick)
	defer versionTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Client connected", zap.String("group", client.group), zap.Int("total", total))

			h.sendInitialVersion(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Client disconnected", zap.Int("total", total))

		case <-versionTicker.C:
			h.checkAndBroadcastVersion(ctx)

		case <-ctx.Done():
			h.log.Info("WebSocket hub shutting down")
			return
		}
	}
}

// checkAndBroadcastVersion sends each group's new version to its
// followers. Group counters are only read when the global one moved.
func (h *Hub) checkAndBroadcastVersion(ctx context.Context) {
	global, err := h.versions.GlobalVersion(ctx)
	if err != nil {
		h.log.Warn("Failed to get global version", zap.Error(err))
		return
	}
	if global == h.lastGlobal {
		return
	}
	h.lastGlobal = global

	for _, group := range h.groups() {
		version := global
		if group != "" {
			version, err = h.versions.Version(ctx, group)
			if err != nil {
				h.log.Warn("Failed to get group version", zap.String("group", group), zap.Error(err))
				continue
			}
		}
		if last, ok := h.lastVersions[group]; ok && last == version {
			continue
		}
		h.lastVersions[group] = version
		h.broadcast(group, version)
	}
}

// groups lists the distinct groups followed by connected clients
func (h *Hub) groups() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for client := range h.clients {
		if !seen[client.group] {
			seen[client.group] = true
			out = append(out, client.group)
		}
	}
	return out
}

func (h *Hub) broadcast(group string, version int64) {
	message, err := encodeVersion(group, version)
	if err != nil {
		h.log.Error("Failed to marshal version update", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.group != group {
			continue
		}
		select {
		case client.send <- message:
		default:
			h.log.Warn("Client send buffer full, skipping", zap.String("group", group))
		}
	}
}

// sendInitialVersion sends the current version to a newly connected client
func (h *Hub) sendInitialVersion(ctx context.Context, client *Client) {
	var (
		version int64
		err     error
	)
	if client.group == "" {
		version, err = h.versions.GlobalVersion(ctx)
	} else {
		version, err = h.versions.Version(ctx, client.group)
	}
	if err != nil {
		h.log.Warn("Failed to get initial version", zap.String("group", client.group), zap.Error(err))
		return
	}

	message, err := encodeVersion(client.group, version)
	if err != nil {
		h.log.Error("Failed to marshal initial version", zap.Error(err))
		return
	}

	select {
	case client.send <- message:
	default:
		h.log.Warn("Client send buffer full before initial version")
	}
}

func encodeVersion(group string, version int64) ([]byte, error) {
	return json.Marshal(VersionUpdate{
		Type:    MessageTypeVersion,
		Group:   group,
		Version: version,
	})
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains the connection until the peer goes away. Clients do not
// send anything meaningful.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		// Coalesce queued messages into the current frame
		n := len(c.send)
		for i := 0; i < n; i++ {
			w.Write([]byte{'\n'})
			w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}

	// The hub closed the channel
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWS handles a WebSocket connection following group ("" for all groups)
func ServeWS(hub *Hub, conn *websocket.Conn, group string) {
	client := &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		group: group,
	}

	client.hub.register <- client

	go client.writePump()

	// Blocks until disconnect
	client.readPump()
}
