// Package notify shows transient notices on the console and, optionally,
// as desktop notifications through github.com/gen2brain/beeep.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/logging"
)

// AppName is the title of desktop notifications.
const AppName = "cineshelf"

// Notifier renders notices.
type Notifier struct {
	logger  *logging.Logger
	out     io.Writer
	desktop bool
	quiet   bool
	mu      sync.RWMutex

	// send and alert are swapped out in tests
	send  func(title, message string) error
	alert func(title, message string) error
}

// Config holds notification configuration.
type Config struct {
	// Desktop also sends notices through the OS notification center.
	Desktop bool

	// Quiet suppresses info and success notices on the console.
	Quiet bool

	// Out receives console notices. Defaults to stderr.
	Out io.Writer
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{Out: os.Stderr}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	return &Notifier{
		logger:  logger,
		out:     out,
		desktop: cfg.Desktop,
		quiet:   cfg.Quiet,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
	}
}

// SetDesktop enables or disables desktop notifications.
func (n *Notifier) SetDesktop(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.desktop = enabled
}

// DesktopEnabled returns whether desktop notifications are sent.
func (n *Notifier) DesktopEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.desktop
}

// Notice shows one message.
func (n *Notifier) Notice(level events.NoticeLevel, message string) {
	if message == "" {
		return
	}

	n.mu.RLock()
	quiet, desktop := n.quiet, n.desktop
	n.mu.RUnlock()

	if !quiet || level >= events.WarnLevel {
		fmt.Fprintf(n.out, "%s %s\n", prefix(level), message)
	}

	if !desktop {
		return
	}

	msg := truncate(message, 200)
	var err error
	if level == events.ErrorLevel {
		// Alert is more prominent on some platforms
		if err = n.alert(AppName, msg); err != nil {
			err = n.send(AppName, msg)
		}
	} else {
		err = n.send(AppName, msg)
	}
	if err != nil {
		n.logger.Warn().Err(err).Str("message", message).Msg("Failed to send desktop notification")
	}
}

// Watch renders notice events from eventBus until ctx is done or the bus closes.
func (n *Notifier) Watch(ctx context.Context, eventBus *events.EventBus) {
	n.Start(ctx, eventBus)()
}

// Start subscribes before returning and renders notices on a goroutine.
// The returned function blocks until rendering stops.
func (n *Notifier) Start(ctx context.Context, eventBus *events.EventBus) (wait func()) {
	ch := eventBus.Subscribe(events.EventNotice)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer eventBus.Unsubscribe(events.EventNotice, ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if notice, ok := ev.(*events.NoticeEvent); ok {
					n.Notice(notice.Level, notice.Message)
				}
			}
		}
	}()

	return func() { <-done }
}

func prefix(level events.NoticeLevel) string {
	switch level {
	case events.SuccessLevel:
		return "✓"
	case events.WarnLevel:
		return "!"
	case events.ErrorLevel:
		return "✗"
	default:
		return "·"
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
