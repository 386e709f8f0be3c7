package service

import (
	"encoding/json"
	"sync"
	"time"
)

// EventType names a server-sent event
type EventType string

const (
	EventCoupleLinked   EventType = "couple.linked"
	EventCoupleUnlinked EventType = "couple.unlinked"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// ResourceEvent builds "<resource>.<action>" event types such as todo.created
func ResourceEvent(resource, action string) EventType {
	return EventType(resource + "." + action)
}

// Event represents a server-sent event
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Publisher fans events out to users. Services depend on this rather than
// on the hub so they can be tested with a recorder.
type Publisher interface {
	SendToUsers(userIDs []string, event Event)
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID     string
	UserID string
	Events chan *Event
	Done   chan struct{}
	once   sync.Once
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.Done)
		close(s.Events)
	})
}

// EventHub manages SSE subscriptions keyed by user
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventHub creates a new event hub that heartbeats every interval
func NewEventHub(interval time.Duration) *EventHub {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	hub := &EventHub{
		subscribers: make(map[string]map[string]*Subscriber),
		heartbeat:   time.NewTicker(interval),
		done:        make(chan struct{}),
	}
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber for a user
func (h *EventHub) Subscribe(userID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		UserID: userID,
		Events: make(chan *Event, 64), // Buffer to prevent blocking
		Done:   make(chan struct{}),
	}

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[string]*Subscriber)
	}
	h.subscribers[userID][subscriberID] = sub
	return sub
}

// Unsubscribe removes a subscriber
func (h *EventHub) Unsubscribe(userID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userSubs, ok := h.subscribers[userID]; ok {
		if sub, ok := userSubs[subscriberID]; ok {
			sub.close()
			delete(userSubs, subscriberID)
		}
		if len(userSubs) == 0 {
			delete(h.subscribers, userID)
		}
	}
}

// SendToUsers delivers event to every connection of each user. Slow
// subscribers with a full buffer miss the event.
func (h *EventHub) SendToUsers(userIDs []string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		for _, sub := range h.subscribers[userID] {
			select {
			case sub.Events <- &event:
			default:
			}
		}
	}
}

func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
			}
			h.mu.RLock()
			for _, userSubs := range h.subscribers {
				for _, sub := range userSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the hub and disconnects every subscriber
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()
		for userID, userSubs := range h.subscribers {
			for _, sub := range userSubs {
				sub.close()
			}
			delete(h.subscribers, userID)
		}
	})
}

// SubscriberCount returns the number of open streams for a user
func (h *EventHub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
