// Package dashboard holds the frontend-agnostic view model for the storage
// dashboard. Frontends render from its accessors and subscribe to the event
// bus; all mutation flows through the Request* methods.
package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terabox/terabox-int/internal/api"
	"github.com/terabox/terabox-int/internal/auth"
	"github.com/terabox/terabox-int/internal/events"
	"github.com/terabox/terabox-int/internal/logging"
	"github.com/terabox/terabox-int/internal/models"
	"github.com/terabox/terabox-int/internal/notify"
	"github.com/terabox/terabox-int/internal/progress"
	"github.com/terabox/terabox-int/internal/transfer"
)

// StoreClient is the remote surface the view model needs. *api.Client
// implements it; tests substitute fakes.
type StoreClient interface {
	ListFiles(ctx context.Context) ([]models.FileRecord, error)
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	UploadFile(ctx context.Context, path string, onProgress func(float64)) (*models.FileRecord, error)
	DeleteFile(ctx context.Context, id string) error
	DownloadFile(ctx context.Context, id, destPath string, onProgress func(float64)) error
}

// Snapshot is one consistent dashboard state: the file listing and the quota
// counters from the same refresh cycle. It is replaced wholesale, never
// patched field by field.
type Snapshot struct {
	Files     []models.FileRecord
	Quota     models.StorageQuota
	Stats     models.DashboardStats
	FetchedAt time.Time
}

// ViewModel owns the dashboard state. All methods are safe for concurrent
// use.
type ViewModel struct {
	client   StoreClient
	gate     *auth.Gate
	bus      *events.EventBus
	notifier *notify.Notifier
	logger   *logging.Logger

	mu       sync.Mutex
	snap     Snapshot
	hasSnap  bool
	query    string
	active   *transfer.UploadTask
	deleting map[string]bool
}

// NewViewModel wires a view model. bus and notifier may be nil.
func NewViewModel(client StoreClient, gate *auth.Gate, bus *events.EventBus, notifier *notify.Notifier) *ViewModel {
	return &ViewModel{
		client:   client,
		gate:     gate,
		bus:      bus,
		notifier: notifier,
		logger:   logging.NewLogger("dashboard"),
		deleting: make(map[string]bool),
	}
}

// Refresh fetches the file listing and dashboard stats concurrently and
// replaces the snapshot only when both succeed. A failed refresh leaves the
// previous snapshot untouched so the dashboard never mixes listing and quota
// from different cycles.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	if _, err := vm.gate.Authorize(); err != nil {
		return err
	}

	var (
		files []models.FileRecord
		stats *models.DashboardStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = vm.client.ListFiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = vm.client.GetDashboardStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		vm.logger.Debug().Err(err).Msg("refresh failed, keeping previous snapshot")
		return err
	}

	snap := Snapshot{
		Files:     files,
		Quota:     stats.Quota(),
		Stats:     *stats,
		FetchedAt: time.Now(),
	}

	vm.mu.Lock()
	vm.snap = snap
	vm.hasSnap = true
	vm.mu.Unlock()

	if vm.bus != nil {
		vm.bus.Publish(&events.SnapshotChangedEvent{
			BaseEvent: events.NewBaseEvent(events.EventSnapshotChanged),
			Files:     snap.Files,
			Quota:     snap.Quota,
		})
	}
	return nil
}

// RequestUpload uploads the file at path. Only one upload may be in flight;
// a second request while one is active is rejected with a validation error
// and does not disturb the running transfer.
//
// On success the snapshot is refreshed before the task slot is released, so
// observers always see the new file by the time the task reports done. On
// failure no refresh happens and no file appears.
func (vm *ViewModel) RequestUpload(ctx context.Context, path string, onProgress func(float64)) (*transfer.UploadTask, error) {
	if _, err := vm.gate.Authorize(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, api.NewValidationError("cannot read " + path + ": " + err.Error())
	}
	if info.IsDir() {
		return nil, api.NewValidationError(path + " is a directory")
	}

	task := transfer.NewUploadTask(filepath.Base(path), path, info.Size())

	vm.mu.Lock()
	if vm.active != nil && !vm.active.Done() {
		vm.mu.Unlock()
		return nil, api.NewValidationError("an upload is already in progress")
	}
	vm.active = task
	vm.mu.Unlock()

	vm.publishUpload(events.EventUploadQueued, task, nil)

	report := func(p float64) {
		task.ReportProgress(p)
		vm.publishUpload(events.EventUploadProgress, task, nil)
		if onProgress != nil {
			onProgress(task.Progress())
		}
	}

	if _, err := vm.client.UploadFile(ctx, path, report); err != nil {
		task.Fail(err)
		vm.publishUpload(events.EventUploadFailed, task, err)
		if vm.notifier != nil {
			vm.notifier.UploadFailed(task.Name, err)
		}
		vm.clearActive(task)
		return task, err
	}

	task.Succeed()
	vm.publishUpload(events.EventUploadCompleted, task, nil)
	if vm.notifier != nil {
		vm.notifier.UploadComplete(task.Name)
	}

	if err := vm.Refresh(ctx); err != nil {
		vm.logger.Warn().Err(err).Msg("post-upload refresh failed")
	}
	vm.clearActive(task)
	return task, nil
}

func (vm *ViewModel) clearActive(task *transfer.UploadTask) {
	vm.mu.Lock()
	if vm.active == task {
		vm.active = nil
	}
	vm.mu.Unlock()
}

func (vm *ViewModel) publishUpload(t events.EventType, task *transfer.UploadTask, err error) {
	if vm.bus == nil {
		return
	}
	vm.bus.Publish(&events.UploadEvent{
		BaseEvent: events.NewBaseEvent(t),
		TaskID:    task.ID,
		Name:      task.Name,
		Size:      task.Size,
		Progress:  task.Progress(),
		Err:       err,
	})
}

// ActiveUpload returns the in-flight upload task, nil when idle.
func (vm *ViewModel) ActiveUpload() *transfer.UploadTask {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.active != nil && vm.active.Done() {
		return nil
	}
	return vm.active
}

// RequestDelete removes a file by id. The listing is never trimmed
// optimistically: the file disappears only through the refresh that follows
// a confirmed delete. A NotFound answer means the file is already gone and
// counts as success. Duplicate requests for an id already being deleted are
// absorbed.
func (vm *ViewModel) RequestDelete(ctx context.Context, id string) error {
	if _, err := vm.gate.Authorize(); err != nil {
		return err
	}
	if id == "" {
		return api.NewValidationError("file id is required")
	}

	vm.mu.Lock()
	if vm.deleting[id] {
		vm.mu.Unlock()
		return nil
	}
	vm.deleting[id] = true
	name, _ := vm.fileInfoLocked(id)
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		delete(vm.deleting, id)
		vm.mu.Unlock()
	}()

	err := vm.client.DeleteFile(ctx, id)
	if err != nil && !api.IsNotFound(err) {
		vm.logger.Debug().Err(err).Str("file_id", id).Msg("delete failed")
		return err
	}
	if api.IsNotFound(err) {
		vm.logger.Debug().Str("file_id", id).Msg("file already gone")
	} else if vm.notifier != nil {
		vm.notifier.FileDeleted(name)
	}

	if err := vm.Refresh(ctx); err != nil {
		vm.logger.Warn().Err(err).Msg("post-delete refresh failed")
	}
	return nil
}

// RequestDownload saves the file with the given id to destPath. An unknown
// id is an error here, unlike delete: the user asked for bytes that do not
// exist. Progress is mirrored onto the event bus alongside the caller's
// callback.
func (vm *ViewModel) RequestDownload(ctx context.Context, id, destPath string, onProgress func(float64)) error {
	if _, err := vm.gate.Authorize(); err != nil {
		return err
	}

	vm.mu.Lock()
	name, size := vm.fileInfoLocked(id)
	vm.mu.Unlock()

	reporter := progress.NewBusProgress(vm.bus, id, name)
	reporter.Start(size, name)

	report := func(p float64) {
		reporter.UpdatePercent(p)
		if onProgress != nil {
			onProgress(p)
		}
	}

	if err := vm.client.DownloadFile(ctx, id, destPath, report); err != nil {
		if vm.notifier != nil {
			vm.notifier.DownloadFailed(name, err)
		}
		return err
	}
	reporter.Finish()
	if vm.notifier != nil {
		vm.notifier.DownloadComplete(name, destPath)
	}
	return nil
}

// fileInfoLocked resolves an id against the current snapshot. Callers hold
// vm.mu. The id itself stands in for the name of an unknown file.
func (vm *ViewModel) fileInfoLocked(id string) (string, int64) {
	for _, f := range vm.snap.Files {
		if f.ID == id {
			return f.DisplayName(), f.Size
		}
	}
	return id, 0
}

// SetSearchQuery updates the dashboard filter. Filtering is display-only;
// the snapshot itself is untouched.
func (vm *ViewModel) SetSearchQuery(q string) {
	vm.mu.Lock()
	vm.query = q
	vm.mu.Unlock()
}

// SearchQuery returns the current filter string.
func (vm *ViewModel) SearchQuery() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.query
}

// Files returns the unfiltered listing from the current snapshot.
func (vm *ViewModel) Files() []models.FileRecord {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]models.FileRecord, len(vm.snap.Files))
	copy(out, vm.snap.Files)
	return out
}

// FilteredFiles returns the files whose display name contains the search
// query, case-insensitively. An empty query returns everything.
func (vm *ViewModel) FilteredFiles() []models.FileRecord {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(vm.query))
	if q == "" {
		out := make([]models.FileRecord, len(vm.snap.Files))
		copy(out, vm.snap.Files)
		return out
	}

	out := make([]models.FileRecord, 0, len(vm.snap.Files))
	for _, f := range vm.snap.Files {
		if strings.Contains(strings.ToLower(f.DisplayName()), q) {
			out = append(out, f)
		}
	}
	return out
}

// Quota returns the quota pair from the current snapshot.
func (vm *ViewModel) Quota() models.StorageQuota {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snap.Quota
}

// Stats returns the dashboard counters from the current snapshot.
func (vm *ViewModel) Stats() models.DashboardStats {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snap.Stats
}

// StoragePercentage returns quota usage as a percentage clamped to [0, 100].
func (vm *ViewModel) StoragePercentage() float64 {
	return vm.Quota().Percentage()
}

// HasSnapshot reports whether at least one refresh has succeeded.
func (vm *ViewModel) HasSnapshot() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.hasSnap
}

// Logout clears the stored session. Remote state is untouched.
func (vm *ViewModel) Logout() error {
	return vm.gate.ClearSession()
}
