package progress

import (
	"testing"
	"time"

	"github.com/terabox/terabox-int/internal/events"
)

func TestBusProgressPublishesDownloadEvents(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()
	ch := bus.Subscribe(events.EventDownloadProgress)

	p := NewBusProgress(bus, "f1", "report.pdf")
	p.Start(1024, "report.pdf")
	p.UpdatePercent(50)
	p.Finish()

	var got []float64
	for len(got) < 3 {
		select {
		case ev := <-ch:
			dl, ok := ev.(*events.DownloadEvent)
			if !ok {
				t.Fatalf("unexpected event type %T", ev)
			}
			if dl.FileID != "f1" || dl.Name != "report.pdf" {
				t.Errorf("event identity = %q/%q", dl.FileID, dl.Name)
			}
			if dl.Size != 1024 {
				t.Errorf("Size = %d, want 1024", dl.Size)
			}
			got = append(got, dl.Progress)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d events", len(got))
		}
	}

	want := []float64{0, 50, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBusProgressNilBus(t *testing.T) {
	p := NewBusProgress(nil, "f1", "report.pdf")
	// must not panic
	p.Start(10, "report.pdf")
	p.UpdatePercent(50)
	p.Finish()
	p.Error(nil)
}

func TestCallback(t *testing.T) {
	if Callback(nil) != nil {
		t.Error("Callback(nil) should be nil")
	}

	bus := events.NewEventBus(4)
	defer bus.Close()
	ch := bus.Subscribe(events.EventDownloadProgress)

	cb := Callback(NewBusProgress(bus, "f1", "a"))
	cb(25)

	select {
	case ev := <-ch:
		if got := ev.(*events.DownloadEvent).Progress; got != 25 {
			t.Errorf("Progress = %v, want 25", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestCLIProgressBeforeStart(t *testing.T) {
	p := NewCLIProgress()
	// updates before Start must not panic
	p.UpdatePercent(50)
	p.Finish()
}
