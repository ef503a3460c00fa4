// Package notify surfaces user notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

var (
	_ ports.Notifier = (*Console)(nil)
	_ ports.Notifier = (*Recorder)(nil)
)

// Console prints notifications to a terminal and logs them.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewConsole creates a console notifier writing to w.
func NewConsole(w io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{w: w, logger: logger}
}

// Notify prints n.
func (c *Console) Notify(n entities.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	marker := "*"
	if n.Variant == entities.VariantDestructive {
		marker = "!"
		c.logger.Warn(n.Title, "detail", n.Description)
	}
	if n.Description == "" {
		fmt.Fprintf(c.w, "[%s] %s\n", marker, n.Title)
		return
	}
	fmt.Fprintf(c.w, "[%s] %s: %s\n", marker, n.Title, n.Description)
}

// Recorder keeps notifications until they are drained.
type Recorder struct {
	mu    sync.Mutex
	items []entities.Notification
	limit int
}

// NewRecorder keeps at most limit notifications, dropping the oldest.
// A limit of zero keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Notify records n.
func (r *Recorder) Notify(n entities.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, n)
	if r.limit > 0 && len(r.items) > r.limit {
		r.items = r.items[len(r.items)-r.limit:]
	}
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []entities.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Notification(nil), r.items...)
}

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []entities.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	return items
}

// Last returns the most recent notification.
func (r *Recorder) Last() (entities.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return entities.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
