package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusExpired PaymentStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusExpired
}

// PaymentSession is one purchase attempt. The token is the bearer proof
// of payment and is never serialized implicitly; handlers decide when it
// may be disclosed.
type PaymentSession struct {
	ID        string        `json:"id"`
	Token     string        `json:"-"`
	Amount    int           `json:"amount"`
	Status    PaymentStatus `json:"status"`
	PayURL    string        `json:"payUrl"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
	PaidAt    *time.Time    `json:"paidAt,omitempty"`
}

type CreatePaymentParams struct {
	ID        string
	Token     string
	Amount    int
	PayURL    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
