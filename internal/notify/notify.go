// Package notify delivers user-facing transfer notifications. Every
// notification goes onto the event bus for in-process consumers; desktop
// delivery via github.com/gen2brain/beeep is best-effort and can be turned
// off without silencing the bus.
package notify

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/terabox/terabox-int/internal/events"
	"github.com/terabox/terabox-int/internal/logging"
)

// Notifier publishes transfer outcomes to the event bus and, when enabled,
// to the desktop.
type Notifier struct {
	bus     *events.EventBus
	logger  *logging.Logger
	desktop bool
}

// Config holds notification configuration.
type Config struct {
	// Desktop enables OS-level notifications in addition to bus events.
	Desktop bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{Desktop: true}
}

// NewNotifier creates a notifier. bus may be nil, in which case only desktop
// delivery happens (and only when enabled).
func NewNotifier(cfg *Config, bus *events.EventBus) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Notifier{
		bus:     bus,
		logger:  logging.NewLogger("notify"),
		desktop: cfg.Desktop,
	}
}

// UploadComplete announces a successful upload.
func (n *Notifier) UploadComplete(name string) {
	n.notify(events.SeveritySuccess, "Upload Complete",
		fmt.Sprintf("%q uploaded.", truncate(name, 40)))
}

// UploadFailed announces a failed upload with its reason.
func (n *Notifier) UploadFailed(name string, err error) {
	n.notify(events.SeverityError, "Upload Failed",
		fmt.Sprintf("%q failed:\n%s", truncate(name, 40), truncate(errText(err), 100)))
}

// DownloadComplete announces a finished download and where it landed.
func (n *Notifier) DownloadComplete(name, destPath string) {
	n.notify(events.SeveritySuccess, "Download Complete",
		fmt.Sprintf("%q saved to:\n%s", truncate(name, 40), shortenPath(destPath)))
}

// DownloadFailed announces a failed download with its reason.
func (n *Notifier) DownloadFailed(name string, err error) {
	n.notify(events.SeverityError, "Download Failed",
		fmt.Sprintf("%q failed:\n%s", truncate(name, 40), truncate(errText(err), 100)))
}

// FileDeleted announces a completed delete.
func (n *Notifier) FileDeleted(name string) {
	n.notify(events.SeverityInfo, "File Deleted",
		fmt.Sprintf("%q was removed.", truncate(name, 40)))
}

func (n *Notifier) notify(severity events.Severity, title, message string) {
	if n == nil {
		return
	}
	if n.bus != nil {
		n.bus.PublishNotification(severity, title, message)
	}
	if !n.desktop {
		return
	}
	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Warn().Err(err).Str("title", title).Msg("failed to send desktop notification")
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// truncate shortens s to at most maxLen runes, replacing the tail with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

// shortenPath compresses long paths to their first and last components so
// they fit in a notification body.
func shortenPath(path string) string {
	const maxLen = 60
	if len(path) <= maxLen {
		return path
	}
	dir, file := filepath.Split(path)
	parts := strings.Split(strings.Trim(dir, string(filepath.Separator)), string(filepath.Separator))
	if len(parts) < 2 {
		return path
	}
	return string(filepath.Separator) + parts[0] + string(filepath.Separator) + "..." + string(filepath.Separator) + file
}
