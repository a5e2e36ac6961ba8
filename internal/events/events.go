package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cineshelf/cineshelf/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// List query lifecycle
	EventQueryLoading EventType = "query_loading" // Request issued, skeleton may be shown
	EventQueryLoaded  EventType = "query_loaded"  // Latest request succeeded
	EventQueryFailed  EventType = "query_failed"  // Latest request failed, last good data kept

	// Transient user-facing messages ("Movie added!", "Delete failed.")
	EventNotice EventType = "notice"

	// Sign in, sign up and sign out
	EventSessionChanged EventType = "session_changed"
)

// NoticeLevel defines notice severity
type NoticeLevel int

const (
	InfoLevel NoticeLevel = iota
	SuccessLevel
	WarnLevel
	ErrorLevel
)

func (l NoticeLevel) String() string {
	switch l {
	case InfoLevel:
		return "INFO"
	case SuccessLevel:
		return "SUCCESS"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// QueryEvent reports a list query transition for one view.
// Seq is the request sequence number that produced the transition.
type QueryEvent struct {
	BaseEvent
	View    string
	Seq     uint64
	Page    int
	Limit   int
	Total   int
	Count   int // items on the current page
	Query   string
	Message string // failure text, empty unless EventQueryFailed
}

// NoticeEvent is a transient message for the user
type NoticeEvent struct {
	BaseEvent
	Level   NoticeLevel
	View    string
	Message string
}

// SessionEvent reports a session change. SignedIn is false after sign-out.
type SessionEvent struct {
	BaseEvent
	SignedIn bool
	Name     string
	Email    string
	Role     string
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events for a full subscriber are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishNotice is a convenience method for publishing notice events
func (eb *EventBus) PublishNotice(level NoticeLevel, view, message string) {
	eb.Publish(&NoticeEvent{
		BaseEvent: BaseEvent{
			EventType: EventNotice,
			Time:      time.Now(),
		},
		Level:   level,
		View:    view,
		Message: message,
	})
}

// PublishSession is a convenience method for publishing session changes
func (eb *EventBus) PublishSession(signedIn bool, name, email, role string) {
	eb.Publish(&SessionEvent{
		BaseEvent: BaseEvent{
			EventType: EventSessionChanged,
			Time:      time.Now(),
		},
		SignedIn: signedIn,
		Name:     name,
		Email:    email,
		Role:     role,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			close(subCh)
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
// Use this when cleaning up a subscriber that subscribed with SubscribeAll.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				close(subCh)
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			close(subCh)
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
