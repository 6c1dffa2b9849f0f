// Package notify delivers validation notifications to whatever presents
// them: a terminal, a log, an HTTP response or a test recorder.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// TypeWarning is the only notification type the validator emits.
const TypeWarning = "warning"

// Notification is a dialog-ready description of a single failure.
// Key is the stable diagnostic key (for example "rows:priceZero").
type Notification struct {
	Type    string `json:"type" yaml:"type"`
	Title   string `json:"title" yaml:"title"`
	Message string `json:"message" yaml:"message"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// Multi fans a notification out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(n Notification) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(n)
			}
		}
	})
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder keeps every notification it receives. It is safe for concurrent
// use; the batch processor gives each form its own Recorder.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Len returns the number of recorded notifications.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// =============================================================================
// PRESENTERS
// =============================================================================

// Writer renders notifications as a plain-text dialog.
type Writer struct {
	out io.Writer
	mu  sync.Mutex
}

// NewWriter returns a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify prints the notification.
//
// Output format:
//
//	[WARNING] Invalid email
//	  The recipient's email address is not valid. (recipient:email)
func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "[%s] %s\n", strings.ToUpper(n.Type), n.Title)
	if n.Key != "" {
		fmt.Fprintf(w.out, "  %s (%s)\n", n.Message, n.Key)
		return
	}
	fmt.Fprintf(w.out, "  %s\n", n.Message)
}

// Log returns a notifier writing each notification as a structured warning.
func Log(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NotifierFunc(func(n Notification) {
		logger.Warn("form.notification",
			zap.String("type", n.Type),
			zap.String("key", n.Key),
			zap.String("title", n.Title),
		)
	})
}
