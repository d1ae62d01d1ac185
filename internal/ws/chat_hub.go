package ws

import (
	"encoding/json"
	"sync"
)

// ChatRoom is one room per match (the two matched pets' connections).
type ChatRoom struct {
	MatchID uint
	Pet1ID  uint
	Pet2ID  uint

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewChatRoom(matchID, pet1ID, pet2ID uint) *ChatRoom {
	return &ChatRoom{
		MatchID: matchID,
		Pet1ID:  pet1ID,
		Pet2ID:  pet2ID,
		clients: make(map[*Client]struct{}),
	}
}

func (r *ChatRoom) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *ChatRoom) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *ChatRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// HasViewer reports whether any connection for petID is currently in the room.
// Used to decide between in-band delivery and a push notification.
func (r *ChatRoom) HasViewer(petID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.clients {
		if c.PetID == petID {
			return true
		}
	}
	return false
}

// Broadcast delivers payload to every connection in the room. Slow consumers
// whose send buffer is full are skipped; the app-level contract is
// at-least-once with client-side dedup by message ID.
func (r *ChatRoom) Broadcast(payload interface{}) {
	data, _ := json.Marshal(payload)
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// BroadcastExcept delivers payload to every connection except from.
func (r *ChatRoom) BroadcastExcept(from *Client, payload interface{}) {
	data, _ := json.Marshal(payload)
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != from {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// ChatHub holds all chat rooms by match ID.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]*ChatRoom
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[uint]*ChatRoom)}
}

// Join subscribes the client to the match's room, creating the room when
// absent. Create-and-join holds the hub lock the whole time so a concurrent
// RemoveRoomIfEmpty can never delete the room between the lookup and the
// join and leave the client in an orphaned room.
func (h *ChatHub) Join(matchID, pet1ID, pet2ID uint, c *Client) *ChatRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[matchID]
	if !ok {
		r = NewChatRoom(matchID, pet1ID, pet2ID)
		h.rooms[matchID] = r
	}
	r.Join(c)
	return r
}

func (h *ChatHub) GetRoom(matchID uint) *ChatRoom {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[matchID]
}

// RemoveRoomIfEmpty drops the room once the last connection leaves, so
// abandoned matches do not pin room state forever. Emptiness is observed
// under the hub lock, and Join takes the same lock, so a room seen empty
// here cannot gain a subscriber before the delete.
func (h *ChatHub) RemoveRoomIfEmpty(matchID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[matchID]; ok && r.ClientCount() == 0 {
		delete(h.rooms, matchID)
	}
}

// Publish sends payload to every subscriber of the match. No-op when nobody
// is subscribed. Satisfies the chat service's notifier contract.
func (h *ChatHub) Publish(matchID uint, payload interface{}) {
	room := h.GetRoom(matchID)
	if room == nil {
		return
	}
	room.Broadcast(payload)
}

// HasViewer reports whether the given pet has a live connection to the match.
func (h *ChatHub) HasViewer(matchID, petID uint) bool {
	room := h.GetRoom(matchID)
	if room == nil {
		return false
	}
	return room.HasViewer(petID)
}
