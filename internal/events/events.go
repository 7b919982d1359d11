// Package events provides the pub/sub bus that decouples the dashboard
// view model from whatever frontend is observing it.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/terabox/terabox-int/internal/models"
)

// EventType identifies the kind of event on the bus.
type EventType string

const (
	// EventSnapshotChanged fires when the dashboard replaces its
	// (files, quota) snapshot after a successful refresh.
	EventSnapshotChanged EventType = "snapshot_changed"

	// Upload lifecycle events.
	EventUploadQueued    EventType = "upload_queued"
	EventUploadProgress  EventType = "upload_progress"
	EventUploadCompleted EventType = "upload_completed"
	EventUploadFailed    EventType = "upload_failed"

	// EventDownloadProgress reports download progress; completion and
	// failure reach the user through notifications.
	EventDownloadProgress EventType = "download_progress"

	// EventNotification carries user-facing messages with a severity flag.
	// Success confirmations and errors travel through this one channel.
	EventNotification EventType = "notification"
)

// Severity flags a notification for the presentation layer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBaseEvent stamps a BaseEvent of the given type with the current time.
func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// SnapshotChangedEvent announces a new authoritative dashboard snapshot.
// Files and Quota always come from the same refresh cycle.
type SnapshotChangedEvent struct {
	BaseEvent
	Files []models.FileRecord
	Quota models.StorageQuota
}

// UploadEvent tracks one upload task through its lifecycle.
type UploadEvent struct {
	BaseEvent
	TaskID   string
	Name     string  // display name (filename)
	Size     int64   // bytes
	Progress float64 // 0 to 100
	Err      error   // set on EventUploadFailed
}

// DownloadEvent reports download progress for a file.
type DownloadEvent struct {
	BaseEvent
	FileID   string
	Name     string  // display name (filename)
	Size     int64   // bytes, 0 when unknown
	Progress float64 // 0 to 100
}

// NotificationEvent is a user-facing message. All outcomes, success and
// failure alike, reach the user through these; Severity distinguishes them.
type NotificationEvent struct {
	BaseEvent
	Severity Severity
	Title    string
	Message  string
}

// EventBus manages event subscriptions and publishing.
// Publish never blocks: events to full subscriber buffers are dropped and
// counted, which keeps slow frontends from stalling transfers.
type EventBus struct {
	subscribers map[EventType][]chan Event
	all         []chan Event
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
}

const defaultBufferSize = 256

// NewEventBus creates a new event bus with the specified buffer size per
// subscriber channel (<= 0 selects the default).
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
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

// SubscribeAll creates a subscription to all events.
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
			eb.dropped.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// PublishNotification is a convenience method for user-facing messages.
func (eb *EventBus) PublishNotification(severity Severity, title, message string) {
	eb.Publish(&NotificationEvent{
		BaseEvent: BaseEvent{EventType: EventNotification, Time: time.Now()},
		Severity:  severity,
		Title:     title,
		Message:   message,
	})
}

// Unsubscribe removes a subscription channel from a specific event type.
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
			break
		}
	}
}

// Close shuts down the event bus and closes all subscriber channels.
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

// DroppedEventCount returns the number of events dropped due to full buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.dropped.Load()
}
