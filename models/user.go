package models

import (
	"context"
	"strings"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// User statuses. "deleted" is never written by this service but still shows up
// in records that older admin tools soft-deleted.
const (
	UserPendingApproval = "pending_approval"
	UserActive          = "active"
	UserRejected        = "rejected"
	UserDeleted         = "deleted"
)

type User struct {
	ID             string                  `json:"-"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	Phone          Text                    `json:"phone,omitempty"`
	Status         string                  `json:"status,omitempty"`
	Balance        Amount                  `json:"balance"`
	TotalEarnings  Amount                  `json:"totalEarnings"`
	ReferredBy     string                  `json:"referredBy,omitempty"`
	Referrals      map[string]ReferralEdge `json:"referrals,omitempty"`
	KYC            *KYCInfo                `json:"kyc,omitempty"`
	OwnedCourseIDs StringSet               `json:"ownedCourseIds,omitempty"`
	CourseID       string                  `json:"courseId,omitempty"` // legacy single-package field
	SpecialAccess  *SpecialAccess          `json:"specialAccess,omitempty"`
}

func (u *User) SetID(id string) { u.ID = id }

// Visible reports whether the user may appear as an earner: a non-empty name
// and a status that is neither deleted nor rejected.
func (u User) Visible() bool {
	if strings.TrimSpace(u.Name) == "" {
		return false
	}
	return u.Status != UserDeleted && u.Status != UserRejected
}

// KYCInfo is the copy of the KYC state kept on the user record.
type KYCInfo struct {
	Status      string    `json:"status"`
	SubmittedAt Timestamp `json:"submittedAt"`
	ReviewedAt  Timestamp `json:"reviewedAt"`
	Reason      string    `json:"reason,omitempty"`
}

// SpecialAccess unlocks every package and overrides the commission rate.
type SpecialAccess struct {
	Enabled        bool   `json:"enabled"`
	CommissionRate Amount `json:"commissionRate"` // fraction, 0.7 means 70%
}

// LoadUsers returns every decodable user ordered by id.
func LoadUsers(ctx context.Context, st store.Store) ([]User, error) {
	snap, err := st.Get(ctx, UsersPath)
	if err != nil {
		return nil, err
	}
	users, _ := DecodeAll[User](snap)
	return users, nil
}

// UsersByID indexes users for lookups during aggregation.
func UsersByID(users []User) map[string]User {
	out := make(map[string]User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out
}
