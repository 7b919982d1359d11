package events

import (
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventUploadProgress)

	testEvent := &UploadEvent{
		BaseEvent: BaseEvent{
			EventType: EventUploadProgress,
			Time:      time.Now(),
		},
		TaskID:   "task-1",
		Name:     "report.pdf",
		Progress: 50,
	}

	bus.Publish(testEvent)

	select {
	case received := <-ch:
		upload, ok := received.(*UploadEvent)
		if !ok {
			t.Fatal("Expected UploadEvent")
		}
		if upload.TaskID != "task-1" {
			t.Errorf("Expected task ID 'task-1', got '%s'", upload.TaskID)
		}
		if upload.Progress != 50 {
			t.Errorf("Expected progress 50, got %f", upload.Progress)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_SubscriberOnlySeesItsType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSnapshotChanged)

	bus.PublishNotification(SeverityError, "Upload failed", "network unreachable")

	select {
	case ev := <-ch:
		t.Fatalf("subscriber received unrelated event %v", ev.Type())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()

	bus.PublishNotification(SeveritySuccess, "Upload complete", "report.pdf")

	select {
	case received := <-ch:
		note, ok := received.(*NotificationEvent)
		if !ok {
			t.Fatal("Expected NotificationEvent")
		}
		if note.Severity != SeveritySuccess {
			t.Errorf("Severity = %q, want success", note.Severity)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	_ = bus.Subscribe(EventNotification)

	// Second publish overflows the size-1 buffer; it must not block.
	done := make(chan struct{})
	go func() {
		bus.PublishNotification(SeverityInfo, "one", "")
		bus.PublishNotification(SeverityInfo, "two", "")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}

	if bus.DroppedEventCount() != 1 {
		t.Errorf("DroppedEventCount() = %d, want 1", bus.DroppedEventCount())
	}
}

func TestEventBus_PublishAfterClose(t *testing.T) {
	bus := NewEventBus(10)
	bus.Close()

	// Must not panic on closed channels.
	bus.PublishNotification(SeverityInfo, "late", "")
}
