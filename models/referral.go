package models

import (
	"context"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// ReferralEdge is the entry a referrer keeps for every user who signed up
// through their link: users/{referrer}/referrals/{referred}.
type ReferralEdge struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt Timestamp `json:"joinedAt"`
}

// Commission is one payout-eligible referral conversion. Records are append-only.
type Commission struct {
	ID         string    `json:"-"`
	ReferrerID string    `json:"referrerId"`
	UserID     string    `json:"userId,omitempty"` // buyer whose order produced it
	OrderID    string    `json:"orderId,omitempty"`
	Amount     Amount    `json:"amount"`
	Timestamp  Timestamp `json:"timestamp"`
}

func (c *Commission) SetID(id string) { c.ID = id }

// Cashback is a rebate paid to the buyer of a referred order.
type Cashback struct {
	ID         string    `json:"-"`
	UserID     string    `json:"userId"`
	ReferrerID string    `json:"referrerId"`
	Amount     Amount    `json:"amount"`
	Timestamp  Timestamp `json:"timestamp"`
}

func (c *Cashback) SetID(id string) { c.ID = id }

func LoadCommissions(ctx context.Context, st store.Store) ([]Commission, error) {
	snap, err := st.Get(ctx, CommissionsPath)
	if err != nil {
		return nil, err
	}
	out, _ := DecodeAll[Commission](snap)
	return out, nil
}

func LoadCashbacks(ctx context.Context, st store.Store) ([]Cashback, error) {
	snap, err := st.Get(ctx, CashbacksPath)
	if err != nil {
		return nil, err
	}
	out, _ := DecodeAll[Cashback](snap)
	return out, nil
}
