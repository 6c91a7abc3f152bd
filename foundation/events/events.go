// Package events fans the chain's event lines out to websocket listeners.
// Every line the chain emits has the form "<source>: <text>", block events
// use the "viewer: block:" source with the block JSON as text.
package events

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// BlockPrefix starts every event line announcing a block added to the chain.
const BlockPrefix = "viewer: block:"

// listenerBuffer is how many lines a listener can fall behind before lines
// are dropped for it.
const listenerBuffer = 100

type listener struct {
	ch     chan string
	prefix string
}

// Events tracks the listeners interested in chain events by id.
type Events struct {
	mu        sync.RWMutex
	listeners map[string]listener
	dropped   atomic.Uint64
}

// New constructs an events value with no listeners.
func New() *Events {
	return &Events{
		listeners: make(map[string]listener),
	}
}

// Subscribe registers a listener under the id and returns the channel the
// listener reads chain events from. Only lines starting with prefix are
// delivered, an empty prefix delivers everything. Subscribing an id twice
// returns the existing channel unchanged.
func (evt *Events) Subscribe(id string, prefix string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if l, exists := evt.listeners[id]; exists {
		return l.ch
	}

	l := listener{
		ch:     make(chan string, listenerBuffer),
		prefix: prefix,
	}
	evt.listeners[id] = l

	return l.ch
}

// Unsubscribe removes the listener and closes its channel.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	l, exists := evt.listeners[id]
	if !exists {
		return fmt.Errorf("listener %q does not exist", id)
	}

	delete(evt.listeners, id)
	close(l.ch)

	return nil
}

// Publish hands the line to every listener whose prefix matches and returns
// the number of listeners it reached. A listener that is behind misses the
// line; the chain never waits on a websocket.
func (evt *Events) Publish(line string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	var delivered int
	for _, l := range evt.listeners {
		if !strings.HasPrefix(line, l.prefix) {
			continue
		}

		select {
		case l.ch <- line:
			delivered++
		default:
			evt.dropped.Add(1)
		}
	}

	return delivered
}

// Dropped returns the number of lines listeners missed for being behind.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}

// Count returns the number of listeners.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.listeners)
}

// Close removes every listener and closes its channel.
func (evt *Events) Close() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, l := range evt.listeners {
		delete(evt.listeners, id)
		close(l.ch)
	}
}
