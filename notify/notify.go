// Package notify delivers outbound notifications about back-office events.
// Delivery is best effort: senders never retry and callers never roll back
// committed writes when a notification fails.
package notify

import (
	"context"
	"errors"
)

// Kind identifies the event a message is about and selects its template.
type Kind string

const (
	KindPrizeAwarded       Kind = "prize_awarded"
	KindKYCApproved        Kind = "kyc_approved"
	KindKYCRejected        Kind = "kyc_rejected"
	KindOrderApproved      Kind = "order_approved"
	KindWithdrawalApproved Kind = "withdrawal_approved"
	KindUserDeleted        Kind = "user_deleted"
)

// Message is one notification. Subject and Body are filled from the kind's
// template by Render when left empty.
type Message struct {
	Kind    Kind           `json:"kind"`
	ToEmail string         `json:"toEmail,omitempty"`
	ToName  string         `json:"toName,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Body    string         `json:"body,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
