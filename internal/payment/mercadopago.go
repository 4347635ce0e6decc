package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/mercadopago/sdk-go/pkg/refund"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
)

const ProviderMercadoPago = "mercadopago"

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

type refunder interface {
	Create(ctx context.Context, paymentID int) (*refund.Response, error)
	CreatePartialRefund(ctx context.Context, amount float64, paymentID int) (*refund.Response, error)
}

// sdkRefunder adapts refund.Client, whose CreatePartialRefund takes
// (paymentID, amount), to the refunder argument order.
type sdkRefunder struct {
	refund.Client
}

func (r sdkRefunder) CreatePartialRefund(ctx context.Context, amount float64, paymentID int) (*refund.Response, error) {
	return r.Client.CreatePartialRefund(ctx, paymentID, amount)
}

// MercadoPago opens preference checkouts and issues refunds.
type MercadoPago struct {
	preferences     preferenceCreator
	refunds         refunder
	payments        paymentGetter
	notificationURL string
	backURL         string
}

func NewMercadoPago(accessToken, notificationURL, backURL string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{
		preferences:     preference.NewClient(cfg),
		refunds:         sdkRefunder{refund.NewClient(cfg)},
		payments:        mppayment.NewClient(cfg),
		notificationURL: notificationURL,
		backURL:         backURL,
	}, nil
}

func (m *MercadoPago) StartPayment(ctx context.Context, p outbox.PaymentStart) (outbox.Checkout, error) {
	req := preference.Request{
		Items: []preference.ItemRequest{{
			ID:         strconv.FormatUint(uint64(p.ReservationID), 10),
			Title:      p.Title,
			Quantity:   1,
			UnitPrice:  centsToAmount(p.AmountCents),
			CurrencyID: "BRL",
		}},
		ExternalReference: strconv.FormatUint(uint64(p.PaymentID), 10),
		NotificationURL:   m.notificationURL,
	}
	if p.PayerEmail != "" {
		req.Payer = &preference.PayerRequest{Email: p.PayerEmail}
	}
	if m.backURL != "" {
		req.BackURLs = &preference.BackURLsRequest{
			Success: m.backURL,
			Pending: m.backURL,
			Failure: m.backURL,
		}
	}

	res, err := m.preferences.Create(ctx, req)
	if err != nil {
		return outbox.Checkout{}, fmt.Errorf("create preference: %w", err)
	}
	return outbox.Checkout{CheckoutID: res.ID, CheckoutURL: res.InitPoint}, nil
}

func (m *MercadoPago) Refund(ctx context.Context, r outbox.Refund) error {
	id, err := strconv.Atoi(r.ProviderPaymentID)
	if err != nil {
		return fmt.Errorf("invalid provider payment id %q: %w", r.ProviderPaymentID, err)
	}

	if r.Partial {
		_, err = m.refunds.CreatePartialRefund(ctx, centsToAmount(r.AmountCents), id)
	} else {
		_, err = m.refunds.Create(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("refund payment %d: %w", id, err)
	}
	return nil
}

// Notice is a provider payment resolved back to our payment row.
type Notice struct {
	PaymentID         uint
	Status            string
	ProviderPaymentID string
}

// LookupPayment fetches a payment announced by a MercadoPago notification.
// The notification only carries the provider id; our id travels in external_reference.
func (m *MercadoPago) LookupPayment(ctx context.Context, providerPaymentID string) (Notice, error) {
	id, err := strconv.Atoi(providerPaymentID)
	if err != nil {
		return Notice{}, fmt.Errorf("invalid provider payment id %q: %w", providerPaymentID, err)
	}
	res, err := m.payments.Get(ctx, id)
	if err != nil {
		return Notice{}, fmt.Errorf("get payment %d: %w", id, err)
	}
	ours, err := strconv.ParseUint(res.ExternalReference, 10, 64)
	if err != nil || ours == 0 {
		return Notice{}, fmt.Errorf("payment %d has no usable external_reference %q", id, res.ExternalReference)
	}
	return Notice{
		PaymentID:         uint(ours),
		Status:            res.Status,
		ProviderPaymentID: strconv.Itoa(res.ID),
	}, nil
}

// StatusFromProvider maps a MercadoPago payment status to ours.
// "pending" and "in_process" report no change.
func StatusFromProvider(s string) (domain.PaymentStatus, bool) {
	switch s {
	case "authorized":
		return domain.PaymentAuthorized, true
	case "approved":
		return domain.PaymentPaid, true
	case "rejected":
		return domain.PaymentFailed, true
	case "cancelled":
		return domain.PaymentCancelled, true
	case "refunded", "charged_back":
		return domain.PaymentRefunded, true
	default:
		return "", false
	}
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

var _ outbox.PaymentGateway = (*MercadoPago)(nil)
