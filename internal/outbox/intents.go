package outbox

// Intents are collected inside a transaction and only dispatched after commit.

type Notification struct {
	UserID        uint
	Kind          string
	Title         string
	Body          string
	ReservationID *uint
}

type Email struct {
	To        string
	Subject   string
	Text      string
	HTML      string
	DedupeKey string
}

type PaymentStart struct {
	PaymentID     uint
	ReservationID uint
	Provider      string
	AmountCents   int64
	Title         string
	PayerEmail    string
}

type Refund struct {
	PaymentID         uint
	Provider          string
	ProviderPaymentID string
	AmountCents       int64
	Partial           bool
}

type AuditEntry struct {
	ActorID  *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

type Batch struct {
	Audits        []AuditEntry
	Notifications []Notification
	Emails        []Email
	Payments      []PaymentStart
	Refunds       []Refund
}

func (b *Batch) Audit(e AuditEntry)          { b.Audits = append(b.Audits, e) }
func (b *Batch) Notify(n Notification)       { b.Notifications = append(b.Notifications, n) }
func (b *Batch) Email(e Email)               { b.Emails = append(b.Emails, e) }
func (b *Batch) StartPayment(p PaymentStart) { b.Payments = append(b.Payments, p) }
func (b *Batch) Refund(r Refund)             { b.Refunds = append(b.Refunds, r) }

func (b Batch) Len() int {
	return len(b.Audits) + len(b.Notifications) + len(b.Emails) + len(b.Payments) + len(b.Refunds)
}

// Merge appends other into b.
func (b *Batch) Merge(other Batch) {
	b.Audits = append(b.Audits, other.Audits...)
	b.Notifications = append(b.Notifications, other.Notifications...)
	b.Emails = append(b.Emails, other.Emails...)
	b.Payments = append(b.Payments, other.Payments...)
	b.Refunds = append(b.Refunds, other.Refunds...)
}
