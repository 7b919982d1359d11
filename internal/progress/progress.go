// Package progress provides progress reporting for CLI transfers and for
// event-bus consumers.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/terabox/terabox-int/internal/events"
)

// Reporter receives transfer progress as a percentage in [0, 100].
type Reporter interface {
	Start(size int64, description string)
	UpdatePercent(p float64)
	Finish()
	Error(err error)
}

// Callback bridges a Reporter into the per-transfer onProgress signature.
func Callback(r Reporter) func(float64) {
	if r == nil {
		return nil
	}
	return r.UpdatePercent
}

// CLIProgress renders a terminal progress bar.
type CLIProgress struct {
	bar  *progressbar.ProgressBar
	size int64
}

// NewCLIProgress creates a CLI progress reporter.
func NewCLIProgress() *CLIProgress {
	return &CLIProgress{}
}

// Start initializes the progress bar with the transfer size and description.
func (p *CLIProgress) Start(size int64, description string) {
	p.size = size
	p.bar = progressbar.NewOptions64(size,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// UpdatePercent moves the bar to the byte position matching the percentage.
func (p *CLIProgress) UpdatePercent(pct float64) {
	if p.bar == nil {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	_ = p.bar.Set64(int64(pct / 100 * float64(p.size)))
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error prints the failure under the bar.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// BusProgress publishes download progress onto the event bus for non-CLI
// frontends. Upload progress reaches the bus through the task owner.
type BusProgress struct {
	bus    *events.EventBus
	fileID string
	name   string
	size   int64
}

// NewBusProgress creates a bus-backed progress reporter for the given file.
func NewBusProgress(bus *events.EventBus, fileID, name string) *BusProgress {
	return &BusProgress{bus: bus, fileID: fileID, name: name}
}

// Start records the transfer size and publishes the initial 0% event.
func (p *BusProgress) Start(size int64, _ string) {
	p.size = size
	p.publish(0)
}

// UpdatePercent publishes a progress event.
func (p *BusProgress) UpdatePercent(pct float64) {
	p.publish(pct)
}

// Finish publishes the terminal 100% event.
func (p *BusProgress) Finish() {
	p.publish(100)
}

// Error is a no-op; failures are published by the owner of the transfer.
func (p *BusProgress) Error(_ error) {}

func (p *BusProgress) publish(pct float64) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(&events.DownloadEvent{
		BaseEvent: events.NewBaseEvent(events.EventDownloadProgress),
		FileID:    p.fileID,
		Name:      p.name,
		Size:      p.size,
		Progress:  pct,
	})
}
