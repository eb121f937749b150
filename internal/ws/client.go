package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subprotocols. The zstd variant carries whole frames as zstd-compressed
// JSON in binary messages; the json variant is plain text frames.
const (
	ProtocolJSON = "gexlens.json.v1"
	ProtocolZstd = "gexlens.zstd.v1"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Send buffer size per client.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Dashboard origin is not fixed
	Subprotocols:    []string{ProtocolZstd, ProtocolJSON},
}

// Client represents a WebSocket client connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	connID   string
	groups   map[string]bool
	logger   *zap.Logger
	protocol string
}

// HandleWS upgrades an HTTP request and attaches the connection to the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	protocol := ProtocolJSON
	var responseHeader http.Header
	for _, proto := range websocket.Subprotocols(r) {
		switch proto {
		case ProtocolZstd, ProtocolJSON:
			protocol = proto
			responseHeader = http.Header{"Sec-WebSocket-Protocol": {proto}}
		}
		if responseHeader != nil {
			break
		}
	}

	conn, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		connID:   uuid.New().String(),
		groups:   make(map[string]bool),
		logger:   h.logger,
		protocol: protocol,
	}

	h.register <- client

	client.send <- client.frame(buildConnectedMessage(client.connID))

	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	msgType := websocket.TextMessage
	if c.protocol == ProtocolZstd {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, send close message
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msgType, message); err != nil {
				c.logger.Debug("websocket write error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming upstream message.
func (c *Client) handleMessage(data []byte) {
	msg, err := parseUpstreamMessage(data)
	if err != nil {
		c.logger.Debug("failed to parse upstream message",
			zap.String("connID", c.connID),
			zap.Error(err),
		)
		return
	}

	switch m := msg.(type) {
	case *joinGroupRequest:
		if c.hub.validGroup == nil || c.hub.validGroup(m.group) {
			c.hub.JoinGroup(c, m.group)
			if m.ackID != nil {
				c.send <- c.frame(buildAckMessage(*m.ackID, true))
			}
		} else {
			c.logger.Debug("invalid group name",
				zap.String("connID", c.connID),
				zap.String("group", m.group),
			)
			if m.ackID != nil {
				c.send <- c.frame(buildAckMessage(*m.ackID, false))
			}
		}

	case *leaveGroupRequest:
		c.hub.LeaveGroup(c, m.group)
		if m.ackID != nil {
			c.send <- c.frame(buildAckMessage(*m.ackID, true))
		}

	case *pingRequest:
		c.send <- c.frame(buildPongMessage())
	}
}

// frame finalizes a JSON frame for this client's protocol.
func (c *Client) frame(frame []byte) []byte {
	if c.protocol == ProtocolZstd {
		return c.hub.encoder.Compress(frame)
	}
	return frame
}

// buildDataMsg creates a data frame in this client's protocol format.
func (c *Client) buildDataMsg(group string, payload []byte) []byte {
	return c.frame(buildDataMessage(group, payload))
}

// Upstream message types for internal routing
type (
	joinGroupRequest struct {
		group string
		ackID *uint64
	}
	leaveGroupRequest struct {
		group string
		ackID *uint64
	}
	pingRequest struct{}
)

// parseUpstreamMessage parses a JSON-encoded upstream message.
func parseUpstreamMessage(data []byte) (any, error) {
	var msg struct {
		Type  string  `json:"type"`
		Group string  `json:"group"`
		AckID *uint64 `json:"ackId"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	switch msg.Type {
	case "joinGroup":
		return &joinGroupRequest{group: msg.Group, ackID: msg.AckID}, nil
	case "leaveGroup":
		return &leaveGroupRequest{group: msg.Group, ackID: msg.AckID}, nil
	case "ping":
		return &pingRequest{}, nil
	default:
		return nil, errUnknownMessage(msg.Type)
	}
}

type errUnknownMessage string

func (e errUnknownMessage) Error() string { return "unknown message type: " + string(e) }

func buildConnectedMessage(connectionID string) []byte {
	data, _ := json.Marshal(map[string]any{
		"type":         "system",
		"event":        "connected",
		"connectionId": connectionID,
	})
	return data
}

func buildAckMessage(ackID uint64, success bool) []byte {
	data, _ := json.Marshal(map[string]any{
		"type":    "ack",
		"ackId":   ackID,
		"success": success,
	})
	return data
}

func buildPongMessage() []byte {
	data, _ := json.Marshal(map[string]any{"type": "pong"})
	return data
}

func buildDataMessage(group string, payload []byte) []byte {
	data, _ := json.Marshal(map[string]any{
		"type":  "message",
		"group": group,
		"data":  json.RawMessage(payload),
	})
	return data
}
