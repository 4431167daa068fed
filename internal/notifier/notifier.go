// Package notifier produces the one-shot "ready to serve" alert for
// cashier and admin roles.
package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"tablepay/internal/domain"
	"tablepay/internal/feed"
	"tablepay/internal/logger"
)

// Sound plays the audible half of an alert.
type Sound interface {
	Play() error
}

// Bell writes the terminal bell character. Stand-in for the browser
// audio cue of the original dashboards.
type Bell struct {
	W io.Writer
}

func (b Bell) Play() error {
	_, err := fmt.Fprint(b.W, "\a")
	return err
}

// Notifier formats ready alerts. It remembers the last seen status per
// order for the session, so a re-delivered event for the same
// transition never toasts twice.
type Notifier struct {
	log   logger.Logger
	out   io.Writer
	sound Sound

	mu       sync.Mutex
	lastSeen map[uuid.UUID]domain.Status
}

type Option func(*Notifier)

func WithOutput(w io.Writer) Option {
	return func(n *Notifier) { n.out = w }
}

func WithSound(s Sound) Option {
	return func(n *Notifier) { n.sound = s }
}

func New(log logger.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		log:      log,
		out:      os.Stdout,
		lastSeen: make(map[uuid.UUID]domain.Status),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.sound == nil {
		n.sound = Bell{W: n.out}
	}
	return n
}

// Attach subscribes the notifier to the feed. Only UPDATE events landing
// in ready are delivered: orders are never created directly in ready, so
// inserts carry no alert. The returned subscription must be closed when
// the dashboard goes away.
func (n *Notifier) Attach(ctx context.Context, fd feed.Feed) (feed.Subscription, error) {
	return fd.Subscribe(ctx, feed.Filter{
		Types:     []domain.EventType{domain.EventOrderUpdated},
		NewStatus: domain.StatusReady,
	}, n.HandleEvent)
}

// HandleEvent fires the alert for a ready transition, at most once per
// order per session.
func (n *Notifier) HandleEvent(ev domain.OrderEvent) {
	if ev.Type != domain.EventOrderUpdated || ev.NewStatus != domain.StatusReady {
		return
	}

	n.mu.Lock()
	seen := n.lastSeen[ev.OrderID] == domain.StatusReady
	n.lastSeen[ev.OrderID] = ev.NewStatus
	n.mu.Unlock()

	if seen {
		n.log.Action("notification_deduped").Debug("Suppressed duplicate ready alert",
			"order_number", ev.OrderNumber)
		return
	}

	fmt.Fprintf(n.out, "Order #%s (Table %s) is ready to serve!\n", ev.OrderNumber, ev.TableNumber)

	// Audio is best effort; a playback failure must never surface.
	if err := n.sound.Play(); err != nil {
		n.log.Action("alert_sound_failed").Debug("Audio cue failed", "reason", err.Error())
	}

	n.log.Action("notification_displayed").Info("Ready alert shown",
		"order_number", ev.OrderNumber, "table_number", ev.TableNumber)
}
