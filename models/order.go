package models

import (
	"context"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

const (
	OrderPendingApproval = "Pending Approval"
	OrderCompleted       = "Completed"
	OrderRejected        = "Rejected"
)

// Order is a signup or upgrade purchase. Only admins change its status.
type Order struct {
	ID               string    `json:"-"`
	UserID           string    `json:"userId"`
	ReferrerID       string    `json:"referrerId,omitempty"`
	CourseID         string    `json:"courseId"` // package id
	Status           string    `json:"status"`
	PaymentMethod    string    `json:"paymentMethod,omitempty"`
	TransactionCode  Text      `json:"transactionCode,omitempty"`
	PaymentProofURL  string    `json:"paymentProofUrl,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
	CommissionAmount *Amount   `json:"commissionAmount,omitempty"`
}

func (o *Order) SetID(id string) { o.ID = id }

func LoadOrders(ctx context.Context, st store.Store) ([]Order, error) {
	snap, err := st.Get(ctx, OrdersPath)
	if err != nil {
		return nil, err
	}
	out, _ := DecodeAll[Order](snap)
	return out, nil
}
