package transfer

import (
	"errors"
	"sync"
	"testing"
)

func TestNewUploadTask(t *testing.T) {
	task := NewUploadTask("report.pdf", "/tmp/report.pdf", 1024)
	if task.ID == "" {
		t.Error("expected a generated ID")
	}
	if task.Outcome() != Pending {
		t.Errorf("Outcome = %v, want Pending", task.Outcome())
	}
	if task.Progress() != 0 {
		t.Errorf("Progress = %v, want 0", task.Progress())
	}
	if task.Done() {
		t.Error("new task should not be done")
	}
}

func TestReportProgressMonotonic(t *testing.T) {
	task := NewUploadTask("f", "/f", 1)

	task.ReportProgress(10)
	task.ReportProgress(55.5)
	task.ReportProgress(30) // regression, dropped
	if got := task.Progress(); got != 55.5 {
		t.Errorf("Progress = %v, want 55.5", got)
	}

	task.ReportProgress(-5)
	task.ReportProgress(150)
	if got := task.Progress(); got != 100 {
		t.Errorf("Progress = %v, want clamped 100", got)
	}
}

func TestSucceedPinsProgress(t *testing.T) {
	task := NewUploadTask("f", "/f", 1)
	task.ReportProgress(42)
	task.Succeed()

	if task.Outcome() != Succeeded {
		t.Errorf("Outcome = %v, want Succeeded", task.Outcome())
	}
	if task.Progress() != 100 {
		t.Errorf("Progress = %v, want 100", task.Progress())
	}
	if task.CompletedAt().IsZero() {
		t.Error("expected CompletedAt to be set")
	}

	// late report after completion is dropped
	task.ReportProgress(10)
	if task.Progress() != 100 {
		t.Error("progress moved after completion")
	}
}

func TestFailTerminalOnce(t *testing.T) {
	task := NewUploadTask("f", "/f", 1)
	cause := errors.New("connection reset")
	task.Fail(cause)

	if task.Outcome() != Failed {
		t.Errorf("Outcome = %v, want Failed", task.Outcome())
	}
	if !errors.Is(task.Err(), cause) {
		t.Errorf("Err = %v, want %v", task.Err(), cause)
	}

	// a second terminal transition is ignored
	task.Succeed()
	if task.Outcome() != Failed {
		t.Error("terminal state changed after Fail")
	}
}

func TestReportProgressConcurrent(t *testing.T) {
	task := NewUploadTask("f", "/f", 1)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			task.ReportProgress(p)
		}(float64(i * 2))
	}
	wg.Wait()

	if got := task.Progress(); got != 98 {
		t.Errorf("Progress = %v, want 98", got)
	}
}

func TestOutcomeString(t *testing.T) {
	if Pending.String() != "pending" || Succeeded.String() != "succeeded" || Failed.String() != "failed" {
		t.Error("unexpected Outcome strings")
	}
}
