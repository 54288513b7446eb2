// Package sse streams vault change events to HTTP subscribers.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// GraphUpdated is broadcast after a change, at most once per throttle window.
const GraphUpdated = "graph.updated"

const (
	subscriberBuffer = 64
	opsBuffer        = 256
	heartbeatEvery   = 15 * time.Second
)

// ChangeData is the payload of a vault change event.
type ChangeData struct {
	Paths []string `json:"paths"`
}

// hub is the state owned by the loop goroutine.
type hub struct {
	clients   map[chan []byte]struct{}
	lastGraph time.Time
}

// Broker fans vault change events out to subscribers.
//
// All state lives in a hub touched only by the loop goroutine; public
// methods submit closures over the ops channel.
type Broker struct {
	graphMin time.Duration
	logger   *slog.Logger

	ops     chan func(*hub)
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits graph.updated at most once per
// graphThrottle (two seconds when zero).
func NewBroker(graphThrottle time.Duration, logger *slog.Logger) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Broker{
		graphMin: graphThrottle,
		logger:   logger,
		ops:      make(chan func(*hub), opsBuffer),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stopCh:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// submit queues op for the loop. It reports false once the broker is closed.
func (b *Broker) submit(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stopped:
		return false
	}
}

// frame encodes one SSE message.
func (b *Broker) frame(kind string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		b.logger.Warn("sse: encode event", slog.String("type", kind), slog.String("error", err.Error()))
		return nil
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", kind, payload))
}

func (h *hub) broadcast(msg []byte) {
	if msg == nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// slow subscriber, drop
		}
	}
}

// Close stops the loop and closes every subscriber channel. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new client. The channel is closed on Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	registered := make(chan struct{})
	ok := b.submit(func(h *hub) {
		h.clients[ch] = struct{}{}
		close(registered)
	})
	if !ok {
		close(ch)
		return ch
	}
	select {
	case <-registered:
	case <-b.stopped:
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	done := make(chan struct{})
	ok := b.submit(func(h *hub) {
		if _, found := h.clients[ch]; found {
			delete(h.clients, ch)
			close(ch)
		}
		close(done)
	})
	if !ok {
		return
	}
	select {
	case <-done:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.submit(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishChange announces a vault write of the given kind touching paths,
// followed by a throttled graph.updated.
func (b *Broker) PublishChange(kind string, paths ...string) {
	if paths == nil {
		paths = []string{}
	}
	msg := b.frame(kind, ChangeData{Paths: paths})
	graph := b.frame(GraphUpdated, struct{}{})

	b.submit(func(h *hub) {
		h.broadcast(msg)
		if now := time.Now(); now.Sub(h.lastGraph) >= b.graphMin {
			h.lastGraph = now
			h.broadcast(graph)
		}
	})
}

// ServeHTTP streams events to one client until it disconnects. Idle
// connections get a comment line every heartbeatEvery.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, open := <-ch:
			if !open {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
