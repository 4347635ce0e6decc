package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	return m.Called(n).Error(0)
}

type MockEmailQueue struct{ mock.Mock }

func (m *MockEmailQueue) EnqueueEmail(ctx context.Context, e Email) error {
	return m.Called(e).Error(0)
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) StartPayment(ctx context.Context, p PaymentStart) (Checkout, error) {
	args := m.Called(p)
	return args.Get(0).(Checkout), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, r Refund) error {
	return m.Called(r).Error(0)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) RecordCheckout(ctx context.Context, paymentID uint, c Checkout) error {
	return m.Called(paymentID, c).Error(0)
}

type MockAudit struct{ mock.Mock }

func (m *MockAudit) RecordAudit(ctx context.Context, e AuditEntry) error {
	return m.Called(e).Error(0)
}

func TestDispatcher_DeliversEveryIntent(t *testing.T) {
	logger, _ := test.NewNullLogger()

	notifier := &MockNotifier{}
	emails := &MockEmailQueue{}
	gateway := &MockGateway{}
	recorder := &MockRecorder{}
	audit := &MockAudit{}

	n := Notification{UserID: 1, Kind: "reservation_created"}
	e := Email{To: "a@b.com", DedupeKey: "reservation:1:created"}
	p := PaymentStart{PaymentID: 9, ReservationID: 1, AmountCents: 12000}
	r := Refund{PaymentID: 8, ProviderPaymentID: "123", AmountCents: 5000}
	a := AuditEntry{Action: "reservation_created"}
	co := Checkout{CheckoutID: "pref-1", CheckoutURL: "https://pay/1"}

	notifier.On("Notify", n).Return(nil)
	emails.On("EnqueueEmail", e).Return(nil)
	gateway.On("StartPayment", p).Return(co, nil)
	gateway.On("Refund", r).Return(nil)
	recorder.On("RecordCheckout", uint(9), co).Return(nil)
	audit.On("RecordAudit", a).Return(nil)

	d := NewDispatcher(logger, Sinks{
		Notifier:  notifier,
		Emails:    emails,
		Payments:  gateway,
		Checkouts: recorder,
		Audit:     audit,
	})

	var b Batch
	b.Notify(n)
	b.Email(e)
	b.StartPayment(p)
	b.Refund(r)
	b.Audit(a)
	d.Dispatch(b)
	d.Close()

	notifier.AssertExpectations(t)
	emails.AssertExpectations(t)
	gateway.AssertExpectations(t)
	recorder.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestDispatcher_FailuresAreIsolated(t *testing.T) {
	logger, hook := test.NewNullLogger()

	notifier := &MockNotifier{}
	emails := &MockEmailQueue{}
	gateway := &MockGateway{}
	recorder := &MockRecorder{}

	notifier.On("Notify", mock.Anything).Return(errors.New("broker down"))
	emails.On("EnqueueEmail", mock.Anything).Return(nil)
	gateway.On("StartPayment", mock.Anything).Return(Checkout{}, errors.New("provider 500"))

	d := NewDispatcher(logger, Sinks{Notifier: notifier, Emails: emails, Payments: gateway, Checkouts: recorder})

	var b Batch
	b.Notify(Notification{UserID: 1})
	b.Email(Email{To: "x@y.com", DedupeKey: "k"})
	b.StartPayment(PaymentStart{PaymentID: 1})
	d.Dispatch(b)
	d.Close()

	emails.AssertNumberOfCalls(t, "EnqueueEmail", 1)
	recorder.AssertNotCalled(t, "RecordCheckout", mock.Anything, mock.Anything)

	errorsLogged := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			errorsLogged++
		}
	}
	assert.Equal(t, 2, errorsLogged)
}

func TestDispatcher_SkipsRefundWithoutProviderPayment(t *testing.T) {
	logger, _ := test.NewNullLogger()
	gateway := &MockGateway{}

	d := NewDispatcher(logger, Sinks{Payments: gateway})

	var b Batch
	b.Refund(Refund{PaymentID: 3, AmountCents: 100})
	d.Dispatch(b)
	d.Close()

	gateway.AssertNotCalled(t, "Refund", mock.Anything)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	logger, hook := test.NewNullLogger()

	started := make(chan struct{}, 3)
	block := make(chan struct{})
	notifier := &MockNotifier{}
	notifier.On("Notify", mock.Anything).Run(func(mock.Arguments) {
		started <- struct{}{}
		<-block
	}).Return(nil)

	d := NewDispatcher(logger, Sinks{Notifier: notifier}, WithQueueSize(1))

	var b Batch
	b.Notify(Notification{UserID: 1})

	d.Dispatch(b) // picked up by the worker, which then blocks
	<-started
	d.Dispatch(b) // buffered
	d.Dispatch(b) // dropped

	close(block)
	d.Close()

	assert.Equal(t, "outbox queue full, dropping batch", hook.LastEntry().Message)
	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestBatch_LenAndMerge(t *testing.T) {
	var a, b Batch
	a.Notify(Notification{})
	b.Email(Email{})
	b.Refund(Refund{})

	a.Merge(b)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 0, Batch{}.Len())
}
