package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ===============================
// Collaborators
// ===============================

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type EmailQueue interface {
	EnqueueEmail(ctx context.Context, e Email) error
}

type Checkout struct {
	CheckoutID  string
	CheckoutURL string
}

type PaymentGateway interface {
	StartPayment(ctx context.Context, p PaymentStart) (Checkout, error)
	Refund(ctx context.Context, r Refund) error
}

type CheckoutRecorder interface {
	RecordCheckout(ctx context.Context, paymentID uint, c Checkout) error
}

type AuditSink interface {
	RecordAudit(ctx context.Context, e AuditEntry) error
}

type Sinks struct {
	Notifier  Notifier
	Emails    EmailQueue
	Payments  PaymentGateway
	Checkouts CheckoutRecorder
	Audit     AuditSink
}

// ===============================
// Dispatcher
// ===============================

type Dispatcher struct {
	sinks   Sinks
	log     logrus.FieldLogger
	queue   chan Batch
	timeout time.Duration

	wg   sync.WaitGroup
	once sync.Once
}

type Option func(*Dispatcher)

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Batch, n)
		}
	}
}

// WithCallTimeout bounds every collaborator call.
func WithCallTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

func NewDispatcher(log logrus.FieldLogger, sinks Sinks, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sinks:   sinks,
		log:     log,
		queue:   make(chan Batch, 100),
		timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

// Dispatch never blocks: a full queue drops the batch.
func (d *Dispatcher) Dispatch(b Batch) {
	if b.Len() == 0 {
		return
	}
	select {
	case d.queue <- b:
	default:
		d.log.WithField("intents", b.Len()).Warn("outbox queue full, dropping batch")
	}
}

// Close drains the queue and waits for the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for b := range d.queue {
		d.deliver(b)
	}
}

func (d *Dispatcher) deliver(b Batch) {
	for _, e := range b.Audits {
		if d.sinks.Audit == nil {
			break
		}
		d.call(func(ctx context.Context) error { return d.sinks.Audit.RecordAudit(ctx, e) },
			logrus.Fields{"intent": "audit", "action": e.Action})
	}

	for _, n := range b.Notifications {
		if d.sinks.Notifier == nil {
			break
		}
		d.call(func(ctx context.Context) error { return d.sinks.Notifier.Notify(ctx, n) },
			logrus.Fields{"intent": "notification", "kind": n.Kind, "user_id": n.UserID})
	}

	for _, e := range b.Emails {
		if d.sinks.Emails == nil {
			break
		}
		d.call(func(ctx context.Context) error { return d.sinks.Emails.EnqueueEmail(ctx, e) },
			logrus.Fields{"intent": "email", "dedupe_key": e.DedupeKey})
	}

	for _, p := range b.Payments {
		if d.sinks.Payments == nil {
			break
		}
		d.call(func(ctx context.Context) error {
			co, err := d.sinks.Payments.StartPayment(ctx, p)
			if err != nil {
				return err
			}
			if d.sinks.Checkouts == nil {
				return nil
			}
			return d.sinks.Checkouts.RecordCheckout(ctx, p.PaymentID, co)
		}, logrus.Fields{"intent": "payment_start", "payment_id": p.PaymentID})
	}

	for _, r := range b.Refunds {
		if d.sinks.Payments == nil {
			break
		}
		if r.ProviderPaymentID == "" {
			d.log.WithField("payment_id", r.PaymentID).Info("refund skipped: payment never reached the provider")
			continue
		}
		d.call(func(ctx context.Context) error { return d.sinks.Payments.Refund(ctx, r) },
			logrus.Fields{"intent": "refund", "payment_id": r.PaymentID, "amount_cents": r.AmountCents})
	}
}

// call isolates one side effect: errors and panics are logged, never propagated.
func (d *Dispatcher) call(fn func(ctx context.Context) error, fields logrus.Fields) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			d.log.WithFields(fields).WithField("panic", rec).Error("outbox intent panicked")
		}
	}()

	if err := fn(ctx); err != nil {
		d.log.WithError(err).WithFields(fields).Error("outbox intent failed")
	}
}
