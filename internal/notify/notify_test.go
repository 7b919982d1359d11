package notify

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/terabox/terabox-int/internal/events"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Desktop {
		t.Error("expected Desktop to be true by default")
	}
}

func TestUploadCompletePublishesToBus(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()
	ch := bus.Subscribe(events.EventNotification)

	n := NewNotifier(&Config{Desktop: false}, bus)
	n.UploadComplete("report.pdf")

	select {
	case ev := <-ch:
		note, ok := ev.(*events.NotificationEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", ev)
		}
		if note.Severity != events.SeveritySuccess {
			t.Errorf("Severity = %v, want success", note.Severity)
		}
		if !strings.Contains(note.Message, "report.pdf") {
			t.Errorf("Message = %q, want file name included", note.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification event received")
	}
}

func TestUploadFailedCarriesReason(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()
	ch := bus.Subscribe(events.EventNotification)

	n := NewNotifier(&Config{Desktop: false}, bus)
	n.UploadFailed("report.pdf", errors.New("connection reset"))

	select {
	case ev := <-ch:
		note := ev.(*events.NotificationEvent)
		if note.Severity != events.SeverityError {
			t.Errorf("Severity = %v, want error", note.Severity)
		}
		if !strings.Contains(note.Message, "connection reset") {
			t.Errorf("Message = %q, want reason included", note.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification event received")
	}
}

func TestNotifierNilBus(t *testing.T) {
	n := NewNotifier(&Config{Desktop: false}, nil)
	// must not panic
	n.UploadComplete("a")
	n.DownloadFailed("b", nil)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 3, "..."},
		{"датасет_результаты.csv", 10, "датасет..."},
		{"报告文件", 10, "报告文件"},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
		}
	}
}

func TestShortenPath(t *testing.T) {
	long := "/a/very/long/path/that/exceeds/the/maximum/length/for/notification/display/file.txt"
	if got := shortenPath(long); len(got) >= len(long) {
		t.Errorf("shortenPath did not shorten: %q", got)
	}
	short := "/short/path"
	if got := shortenPath(short); got != short {
		t.Errorf("shortenPath(%q) = %q, want unchanged", short, got)
	}
}
