package handler

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// SessionWebSocket streams one session's events to a subscriber. There
// is no replay: a client should fetch current state right after
// connecting and rely on events only for changes after that.
func SessionWebSocket(c *websocket.Conn) {
	sessionID := c.Params("id")

	sub := Hub.Subscribe(sessionID)
	defer Hub.Unsubscribe(sub)

	log.Printf("[ws] %s watching session %s from %s", sub.ID(), sessionID, c.RemoteAddr())

	var writeMux sync.Mutex
	done := make(chan struct{})
	defer close(done)

	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Writer: session events plus a ping every 20s.
	go func() {
		ticker := time.NewTicker(20 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				writeMux.Lock()
				c.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := c.WriteJSON(ev)
				writeMux.Unlock()

				if err != nil {
					log.Printf("[ws] %s write error: %v", sub.ID(), err)
					return
				}
			case <-ticker.C:
				writeMux.Lock()
				c.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := c.WriteMessage(websocket.PingMessage, nil)
				writeMux.Unlock()

				if err != nil {
					log.Printf("[ws] %s ping error: %v", sub.ID(), err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Read loop; returning unsubscribes and stops the writer.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.Printf("[ws] %s unexpected close: %v", sub.ID(), err)
			} else {
				log.Printf("[ws] %s closed normally", sub.ID())
			}
			return
		}
	}
}
