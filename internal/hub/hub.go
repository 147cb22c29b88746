package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lunch-picker/internal/domain"
	"lunch-picker/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// 包级别的 WebSocket 常量
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// 客户端只读，入站消息只用于保活
	maxMessageSize = 512

	snapshotTimeout = 5 * time.Second
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type   string // "register", "unregister"
	RoomID string
	Client *Client
}

// RoomLoader 提供新连接客户端的初始房间视图
type RoomLoader interface {
	GetRoom(ctx context.Context, roomID string) (*service.RoomView, error)
}

// OutboundMessage is the JSON frame pushed to websocket clients.
type OutboundMessage struct {
	Type  string              `json:"type"` // "snapshot", "change", "error"
	Room  *service.RoomView   `json:"room,omitempty"`
	Event *domain.ChangeEvent `json:"event,omitempty"`
	Error string              `json:"error,omitempty"`
}

// Hub 维护每个房间的订阅客户端，并把房间变更事件扇出给它们。
type Hub struct {
	messageChan chan HubMessage

	// map[roomID]map[*Client]bool
	rooms   map[string]map[*Client]bool
	roomsMu sync.RWMutex

	loader RoomLoader
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(loader RoomLoader) *Hub {
	if loader == nil {
		panic("RoomLoader cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		rooms:       make(map[string]map[*Client]bool),
		loader:      loader,
	}
}

// Run 启动 Hub 的主事件处理循环，随进程一直运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		default:
			log.Warnf("Hub: Received unknown message type: %s in room %s", msg.Type, msg.RoomID)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	roomID := client.RoomID()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "action": "registerClient"})

	h.roomsMu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
		logCtx.Debug("Client list created for new room")
	}
	h.rooms[roomID][client] = true
	h.roomsMu.Unlock()
	logCtx.Info("Client registered to Hub")

	go h.sendInitialSnapshot(client)
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	roomID := client.RoomID()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "action": "unregisterClient"})

	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	roomClients, ok := h.rooms[roomID]
	if !ok {
		logCtx.Warn("Room not found during client unregister")
		return
	}
	if _, ok := roomClients[client]; !ok {
		logCtx.Warn("Client not found in room during unregister")
		return
	}
	delete(roomClients, client)
	// 只有从 map 删除时才关闭，保证 send 只被关闭一次
	close(client.send)
	if len(roomClients) == 0 {
		delete(h.rooms, roomID)
		logCtx.Debug("Room empty, removed from Hub")
	}
	logCtx.Info("Client unregistered from Hub")
}

// sendInitialSnapshot 向新连接的客户端发送当前房间视图
func (h *Hub) sendInitialSnapshot(client *Client) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": client.RoomID(), "operation": "sendInitialSnapshot"})

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	msg := OutboundMessage{Type: "snapshot"}
	view, err := h.loader.GetRoom(ctx, client.RoomID())
	if err != nil {
		logCtx.WithError(err).Error("Failed to load room for snapshot")
		msg = OutboundMessage{Type: "error", Error: "failed to load room"}
	} else {
		msg.Room = view
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logCtx.WithError(err).Error("Failed to marshal snapshot message")
		return
	}

	// 客户端可能在快照加载期间已经断开
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	if !h.rooms[client.RoomID()][client] {
		return
	}
	select {
	case client.send <- payload:
		logCtx.Debug("Snapshot message sent to client channel")
	default:
		logCtx.Warn("Client send channel full when trying to send snapshot, message dropped")
	}
}

// broadcast 将消息非阻塞地发送给房间内所有客户端
func (h *Hub) broadcast(roomID string, message []byte) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()

	roomClients := h.rooms[roomID]
	if len(roomClients) == 0 {
		return 0
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":         roomID,
		"message_size":    len(message),
		"recipient_count": len(roomClients),
	})
	logCtx.Debug("Broadcasting message to clients")

	delivered := 0
	for client := range roomClients {
		select {
		case client.send <- message:
			delivered++
		default:
			logCtx.Warn("Client send channel full during broadcast, skipping this client")
		}
	}
	return delivered
}

// dispatchChange decodes a change event published on the feed and pushes it
// to the subscribers of its room.
func (h *Hub) dispatchChange(payload []byte) {
	var event domain.ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.RoomID == "" {
		logrus.WithField("payload_size", len(payload)).WithError(err).Warn("Hub: dropping malformed change event")
		return
	}
	message, err := json.Marshal(OutboundMessage{Type: "change", Event: &event})
	if err != nil {
		logrus.WithError(err).Error("Hub: failed to marshal change message")
		return
	}
	h.broadcast(event.RoomID, message)
}

// ListenChanges 订阅 Redis 上所有房间的变更频道并转发给本实例的客户端。
// 阻塞直到 ctx 被取消或订阅断开。
func (h *Hub) ListenChanges(ctx context.Context, rdb *redis.Client, pattern string) error {
	pubsub := rdb.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logrus.WithField("pattern", pattern).Info("Hub subscribed to change feed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.dispatchChange([]byte(msg.Payload))
		}
	}
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)，队列满时返回 false。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"room_id":      msg.RoomID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// ClientCount returns the number of connected clients of a room.
func (h *Hub) ClientCount(roomID string) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	return len(h.rooms[roomID])
}
