package models

import (
	"context"
	"fmt"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// MonthlyTarget is the admin-configured goal stored at settings/monthlyTarget.
type MonthlyTarget struct {
	GoalAmount Amount `json:"goalAmount"`
	Prize      string `json:"prize"`
}

// PrizeRecord is appended once per awarded monthly prize. Month is 1-12.
type PrizeRecord struct {
	ID         string    `json:"-"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	Prize      string    `json:"prize"`
	GoalAmount Amount    `json:"goalAmount"`
	Earnings   Amount    `json:"earnings"`
	AwardedAt  Timestamp `json:"awardedAt"`
}

func (p *PrizeRecord) SetID(id string) { p.ID = id }

// MonthKey is the users/{uid}/monthlyPrizes child key for a month.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%d_%d", year, month)
}

func LoadPrizeRecords(ctx context.Context, st store.Store) ([]PrizeRecord, error) {
	snap, err := st.Get(ctx, PrizeRecordsPath)
	if err != nil {
		return nil, err
	}
	out, _ := DecodeAll[PrizeRecord](snap)
	return out, nil
}

// DeletedUser is the compliance trail kept at deletedUsers/{uid} when a
// removed account had completed transactions.
type DeletedUser struct {
	Name                    string    `json:"name"`
	Email                   string    `json:"email"`
	DeletedAt               Timestamp `json:"deletedAt"`
	HadCompletedTransaction bool      `json:"hadCompletedTransaction"`
}
