package notify

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/log"

	"github.com/TrustedSmartChain/walletcore/metrics"
)

// Notification is a user-facing alert about a newly observed event.
type Notification struct {
	Chain     string    `json:"chain"`
	Account   string    `json:"account"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers a notification somewhere outside the core.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Nop drops every notification.
var Nop Notifier = NotifierFunc(func(context.Context, Notification) error { return nil })

const defaultQueueSize = 256

// Dispatcher decouples producers from a Notifier. Enqueue never blocks: when
// the queue is full the notification is dropped and counted. Delivery
// failures are logged and never reported back to the producer.
type Dispatcher struct {
	target  Notifier
	queue   chan Notification
	timeout time.Duration
	logger  log.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

func NewDispatcher(target Notifier, queueSize int, logger log.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if target == nil {
		target = Nop
	}
	d := &Dispatcher{
		target:  target,
		queue:   make(chan Notification, queueSize),
		timeout: 10 * time.Second,
		logger:  logger.With(log.ModuleKey, "notify"),
		stop:    make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue reports whether n was accepted.
func (d *Dispatcher) Enqueue(n Notification) bool {
	select {
	case <-d.stop:
		return false
	default:
	}

	select {
	case d.queue <- n:
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.logger.Error("notification queue full, dropping", "kind", n.Kind, "reference", n.Reference)
		return false
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		case <-d.stop:
			// drain what was accepted before Close
			for {
				select {
				case n := <-d.queue:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.target.Notify(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.logger.Error("notification delivery failed", "kind", n.Kind, "reference", n.Reference, "err", err)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("delivered").Inc()
}

// Close stops accepting notifications and waits for queued ones to be tried.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}
