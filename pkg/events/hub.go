// Package events broadcasts noncritical domain events (swaps, JIT fills,
// floor ratchets) to subscribers over a local WebSocket endpoint. It is
// adapted from the teacher's subscription.WebSocketClient
// (pkg/subscription/websocket.go): that type dialed out to a Solana
// validator and fanned inbound account-update notifications out to
// per-subscription handlers under a mutex-guarded map; Hub runs the same
// registry/fan-out shape in the other direction — it is the server serving
// outbound domain events to whoever connects, not a client consuming an
// upstream feed. Hub never blocks or fails a swap: Publish drops events to
// subscribers that can't keep up rather than back-pressuring the caller.
package events

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Kind identifies the shape of an Event's Payload.
type Kind string

const (
	KindSwap         Kind = "swap"
	KindJITFill      Kind = "jit_fill"
	KindFloorRatchet Kind = "floor_ratchet"
	KindPhaseChange  Kind = "phase_change"
)

// Event is one published domain occurrence, JSON-encoded to subscribers.
type Event struct {
	Kind      Kind        `json:"kind"`
	PoolID    string      `json:"pool_id"`
	Slot      uint64      `json:"slot"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SwapPayload is Event.Payload for KindSwap.
type SwapPayload struct {
	Trader     string `json:"trader"`
	ZeroForOne bool   `json:"zero_for_one"`
	AmountIn   uint64 `json:"amount_in"`
	AmountOut  uint64 `json:"amount_out"`
	FeeBps     uint32 `json:"fee_bps"`
	StartTick  int32  `json:"start_tick"`
	EndTick    int32  `json:"end_tick"`
}

// JITFillPayload is Event.Payload for KindJITFill.
type JITFillPayload struct {
	Direction string `json:"direction"`
	Filled    bool   `json:"filled"`
	Lower     int32  `json:"lower"`
	Upper     int32  `json:"upper"`
	Size      uint64 `json:"size"`
}

// FloorRatchetPayload is Event.Payload for KindFloorRatchet.
type FloorRatchetPayload struct {
	PreviousTick int32 `json:"previous_tick"`
	NewTick      int32 `json:"new_tick"`
}

// subscriber is one connected WebSocket client's outbound queue.
type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

const subscriberQueueDepth = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans published events out to every currently-connected subscriber.
// One Hub serves every pool; Event.PoolID lets a consumer filter client-side.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	nextID      uint64
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint64]*subscriber)}
}

// ServeHTTP upgrades the request to a WebSocket connection and registers
// it as a subscriber until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("events: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	sub := &subscriber{conn: conn, send: make(chan Event, subscriberQueueDepth)}
	h.subscribers[id] = sub
	h.mu.Unlock()

	go h.writeLoop(id, sub)
	go h.readLoop(id, sub)
}

// writeLoop drains sub.send to the socket until a write fails or the queue
// is closed by unregister.
func (h *Hub) writeLoop(id uint64, sub *subscriber) {
	defer h.unregister(id, sub)
	for ev := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := sub.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// readLoop only exists to notice the peer closing the connection; this
// hub is publish-only and ignores any inbound message content.
func (h *Hub) readLoop(id uint64, sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.unregister(id, sub)
			return
		}
	}
}

func (h *Hub) unregister(id uint64, sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(sub.send)
		sub.conn.Close()
	}
	h.mu.Unlock()
}

// Publish fans ev out to every subscriber. For a subscriber whose queue is
// full the event is dropped (the subscriber stays connected) rather than
// allowed to stall the publisher — this path
// runs inline in the swap hot path and must never block.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		select {
		case sub.send <- ev:
		default:
			logrus.Warnf("events: dropping event for slow subscriber")
		}
	}
}

// SubscriberCount reports how many clients are currently connected.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
