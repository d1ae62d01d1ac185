package ws

import "sync"

// Client represents a single WebSocket connection with pet context.
type Client struct {
	UserID uint
	PetID  uint
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(userID, petID uint) *Client {
	return &Client{
		UserID: userID,
		PetID:  petID,
		Send:   make(chan []byte, 256),
	}
}

// Close shuts the send channel exactly once. Safe to call from any goroutine.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}
