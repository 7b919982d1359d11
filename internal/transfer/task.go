package transfer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal state of an upload task.
type Outcome int

const (
	// Pending means the transfer is still in flight.
	Pending Outcome = iota
	// Succeeded means the server confirmed the upload.
	Succeeded
	// Failed means the transfer ended with an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// UploadTask tracks a single in-flight upload. Progress only moves forward
// and the outcome is set exactly once; late or regressing reports are
// dropped rather than rewinding what the user already saw.
type UploadTask struct {
	ID     string
	Name   string
	Source string
	Size   int64

	CreatedAt time.Time

	mu          sync.Mutex
	progress    float64
	outcome     Outcome
	reason      error
	completedAt time.Time
}

// NewUploadTask creates a pending task for the file at source.
func NewUploadTask(name, source string, size int64) *UploadTask {
	return &UploadTask{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		Size:      size,
		CreatedAt: time.Now(),
	}
}

// ReportProgress records a progress percentage. Values are clamped to
// [0, 100]; decreases and reports after the task completed are ignored.
func (t *UploadTask) ReportProgress(p float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.outcome != Pending {
		return
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if p > t.progress {
		t.progress = p
	}
}

// Succeed marks the task completed and pins progress at 100. A second
// terminal call is ignored.
func (t *UploadTask) Succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.outcome != Pending {
		return
	}
	t.outcome = Succeeded
	t.progress = 100
	t.completedAt = time.Now()
}

// Fail marks the task failed with the given reason. A second terminal call
// is ignored.
func (t *UploadTask) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.outcome != Pending {
		return
	}
	t.outcome = Failed
	t.reason = err
	t.completedAt = time.Now()
}

// Progress returns the last reported percentage.
func (t *UploadTask) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Outcome returns the task's current state.
func (t *UploadTask) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Err returns the failure reason, nil unless the task failed.
func (t *UploadTask) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Done reports whether the task reached a terminal state.
func (t *UploadTask) Done() bool {
	return t.Outcome() != Pending
}

// CompletedAt returns when the task reached its terminal state, zero while
// pending.
func (t *UploadTask) CompletedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedAt
}
