package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/scorekeeper/internal/live"
	"github.com/trentd187/scorekeeper/internal/session"
)

// keepAliveInterval is how often an idle stream gets a comment line, so proxies do not
// close it.
const keepAliveInterval = 15 * time.Second

// StreamMatch returns a handler for GET /api/v1/matches/:id/stream.
//
// The response is a server-sent event stream: the current view first, then one event per
// change of the match. The stream closes after the match ends or is aborted, or when the
// hub drops a watcher that cannot keep up.
func StreamMatch(hub *live.Hub, sessions *session.Manager, buffer int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}

		// Subscribe before reading the view so no change between the two is lost.
		client := hub.Subscribe(id.String(), buffer)
		view, err := sessions.View(id)
		if err != nil {
			hub.Unsubscribe(client)
			return respondError(c, err)
		}
		first, err := json.Marshal(session.Event{Type: session.EventUpdated, MatchID: id.String(), View: &view})
		if err != nil {
			hub.Unsubscribe(client)
			return err
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		// The writer runs after this handler returns, on fasthttp's own goroutine.
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer hub.Unsubscribe(client)

			writeEvent(w, first)
			if err := w.Flush(); err != nil {
				return
			}

			ticker := time.NewTicker(keepAliveInterval)
			defer ticker.Stop()
			for {
				select {
				case data, ok := <-client.Send:
					if !ok {
						return
					}
					writeEvent(w, data)
					if err := w.Flush(); err != nil || isFinal(data) {
						return
					}
				case <-ticker.C:
					fmt.Fprint(w, ": keep-alive\n\n")
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		})
		return nil
	}
}

// writeEvent frames one JSON event. Encoded JSON never contains a raw newline, so a
// single data line is enough.
func writeEvent(w *bufio.Writer, data []byte) {
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// isFinal reports whether an event ends the stream.
func isFinal(data []byte) bool {
	var ev struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return false
	}
	return ev.Type == session.EventEnded || ev.Type == session.EventAborted
}
