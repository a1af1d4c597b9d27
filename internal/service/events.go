package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventNodeUpdated   EventType = "node_updated"
	EventNodeDeleted   EventType = "node_deleted"
	EventListPublished EventType = "list_published"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// NodeStatusPayload accompanies EventNodeUpdated
type NodeStatusPayload struct {
	NodeID int64 `json:"node_id"`
	Active bool  `json:"active"`
}

// NodePayload accompanies EventNodeDeleted
type NodePayload struct {
	NodeID int64 `json:"node_id"`
}

// PublishedPayload accompanies EventListPublished
type PublishedPayload struct {
	Hash  string `json:"hash"`
	Nodes int    `json:"nodes"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// Broadcaster delivers events to connected clients
type Broadcaster interface {
	Broadcast(event interface{})
}

// Forward subscribes to the bus and relays every event to b until done is closed
func (eb *EventBus) Forward(b Broadcaster, done <-chan struct{}) {
	ch := make(chan Event, 100)
	eb.Subscribe(ch)
	go func() {
		for {
			select {
			case event := <-ch:
				b.Broadcast(event)
			case <-done:
				return
			}
		}
	}()
}
