package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// Top-level collections.
const (
	UsersPath              = "users"
	OrdersPath             = "orders"
	CommissionsPath        = "commissions"
	CashbacksPath          = "cashbacks"
	PackagesPath           = "packages"
	SpecialPackagesPath    = "specialPackages"
	KYCRequestsPath        = "kycRequests"
	WithdrawalRequestsPath = "withdrawalRequests"
	PrizeRecordsPath       = "prizeRecords"
	DeletedUsersPath       = "deletedUsers"
	MonthlyTargetPath      = "settings/monthlyTarget"
)

// ErrMalformed marks a stored record that is not a JSON object.
var ErrMalformed = errors.New("models: malformed record")

// Decode reads an object snapshot into out. Fields whose stored type does not
// match the model are left zero and the rest of the record is kept.
func Decode(snap store.Snapshot, out any) error {
	if _, ok := snap.Value().(map[string]any); !ok {
		return fmt.Errorf("%w: %q is not an object", ErrMalformed, snap.Key)
	}
	err := snap.Decode(out)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

// Record is implemented by pointers to every keyed model.
type Record[T any] interface {
	*T
	SetID(id string)
}

// DecodeAll decodes every child of a collection, taking each record's id from
// its key. Children that are not objects are skipped and counted.
func DecodeAll[T any, PT Record[T]](snap store.Snapshot) ([]T, int) {
	children := snap.Children()
	out := make([]T, 0, len(children))
	skipped := 0
	for _, child := range children {
		var item T
		if err := Decode(child, &item); err != nil {
			skipped++
			continue
		}
		PT(&item).SetID(child.Key)
		out = append(out, item)
	}
	return out, skipped
}
