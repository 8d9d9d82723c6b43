package backoffice

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/notify"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// OrderApproval describes what ApproveOrder wrote.
type OrderApproval struct {
	OrderID      string  `json:"orderId"`
	UserID       string  `json:"userId"`
	ReferrerID   string  `json:"referrerId,omitempty"`
	CommissionID string  `json:"commissionId,omitempty"`
	Commission   float64 `json:"commission"`
}

// ApproveOrder completes a pending order, activates the buyer with the
// package's courses and, when the order names an existing referrer, books
// their commission. Everything is written in one update.
func (s *Service) ApproveOrder(ctx context.Context, orderID string, now time.Time) (OrderApproval, error) {
	var order models.Order
	if _, err := s.load(ctx, store.JoinPath(models.OrdersPath, orderID), &order, false); err != nil {
		return OrderApproval{}, err
	}
	if order.Status != models.OrderPendingApproval {
		return OrderApproval{}, fmt.Errorf("%w: order %s is %q", ErrInvalidTransition, orderID, order.Status)
	}

	var pkg models.Package
	hasPkg := false
	if order.CourseID != "" {
		var err error
		if hasPkg, err = s.load(ctx, store.JoinPath(models.PackagesPath, order.CourseID), &pkg, true); err != nil {
			return OrderApproval{}, err
		}
	}
	// the buyer must still exist; approval would otherwise recreate a bare record
	if order.UserID == "" {
		return OrderApproval{}, fmt.Errorf("%w: order %s has no buyer", ErrNotFound, orderID)
	}
	var buyer models.User
	if _, err := s.load(ctx, store.JoinPath(models.UsersPath, order.UserID), &buyer, false); err != nil {
		return OrderApproval{}, err
	}

	owned := make(map[string]any)
	for id, ok := range buyer.OwnedCourseIDs {
		if ok {
			owned[id] = true
		}
	}
	for id, ok := range pkg.CourseIDs {
		if ok {
			owned[id] = true
		}
	}

	writes := map[string]any{
		store.JoinPath(models.OrdersPath, orderID, "status"):       models.OrderCompleted,
		store.JoinPath(models.UsersPath, order.UserID, "status"):   models.UserActive,
		store.JoinPath(models.UsersPath, order.UserID, "courseId"): order.CourseID,
	}
	if len(owned) > 0 {
		writes[store.JoinPath(models.UsersPath, order.UserID, "ownedCourseIds")] = owned
	}

	res := OrderApproval{OrderID: orderID, UserID: order.UserID, ReferrerID: order.ReferrerID}

	if order.ReferrerID != "" {
		var referrer models.User
		found, err := s.load(ctx, store.JoinPath(models.UsersPath, order.ReferrerID), &referrer, true)
		if err != nil {
			return OrderApproval{}, err
		}
		amount, ok := s.commissionFor(order, pkg, hasPkg, referrer)
		if found && ok {
			res.CommissionID = s.newID()
			res.Commission = amount
			writes[store.JoinPath(models.CommissionsPath, res.CommissionID)] = models.Commission{
				ReferrerID: order.ReferrerID,
				UserID:     order.UserID,
				OrderID:    orderID,
				Amount:     models.NewAmount(amount),
				Timestamp:  models.TimestampOf(now),
			}
			writes[store.JoinPath(models.OrdersPath, orderID, "commissionAmount")] = amount
			writes[store.JoinPath(models.UsersPath, order.ReferrerID, "balance")] = orZero(referrer.Balance) + amount
			writes[store.JoinPath(models.UsersPath, order.ReferrerID, "totalEarnings")] = orZero(referrer.TotalEarnings) + amount
		}
	}

	if err := s.st.Update(ctx, writes); err != nil {
		return OrderApproval{}, fmt.Errorf("approve order %s: %w", orderID, err)
	}

	s.log.Info("✅ order approved",
		zap.String("order_id", orderID),
		zap.String("user_id", order.UserID),
		zap.String("referrer_id", order.ReferrerID),
		zap.Float64("commission", res.Commission))

	s.notifier.Dispatch(notify.Message{
		Kind:    notify.KindOrderApproved,
		ToEmail: buyer.Email,
		ToName:  buyer.Name,
		Data:    map[string]any{"orderId": orderID, "packageName": pkg.Name},
	})
	return res, nil
}

// commissionFor is the order's explicit commissionAmount, or floor(price*rate)
// with the referrer's special rate, then the package percent, then the
// service default.
func (s *Service) commissionFor(order models.Order, pkg models.Package, hasPkg bool, referrer models.User) (float64, bool) {
	if order.CommissionAmount != nil {
		return order.CommissionAmount.Float(), order.CommissionAmount.Valid()
	}
	if !hasPkg || !pkg.Price.Valid() {
		return 0, false
	}
	rate := s.rate
	switch {
	case referrer.SpecialAccess != nil && referrer.SpecialAccess.Enabled &&
		referrer.SpecialAccess.CommissionRate.Valid() && referrer.SpecialAccess.CommissionRate.Float() > 0:
		rate = referrer.SpecialAccess.CommissionRate.Float()
	case pkg.CommissionPercent != nil && pkg.CommissionPercent.Valid() && pkg.CommissionPercent.Float() > 0:
		rate = pkg.CommissionPercent.Float() / 100
	}
	return math.Floor(pkg.Price.Float() * rate), true
}

// RejectOrder marks a pending order rejected. A buyer still waiting on
// their first approval is rejected with it.
func (s *Service) RejectOrder(ctx context.Context, orderID string) error {
	var order models.Order
	if _, err := s.load(ctx, store.JoinPath(models.OrdersPath, orderID), &order, false); err != nil {
		return err
	}
	if order.Status != models.OrderPendingApproval {
		return fmt.Errorf("%w: order %s is %q", ErrInvalidTransition, orderID, order.Status)
	}
	var buyer models.User
	if _, err := s.load(ctx, store.JoinPath(models.UsersPath, order.UserID), &buyer, true); err != nil {
		return err
	}

	writes := map[string]any{
		store.JoinPath(models.OrdersPath, orderID, "status"): models.OrderRejected,
	}
	if buyer.Status == models.UserPendingApproval {
		writes[store.JoinPath(models.UsersPath, order.UserID, "status")] = models.UserRejected
	}
	if err := s.st.Update(ctx, writes); err != nil {
		return fmt.Errorf("reject order %s: %w", orderID, err)
	}
	s.log.Info("order rejected", zap.String("order_id", orderID), zap.String("user_id", order.UserID))
	return nil
}

func orZero(a models.Amount) float64 {
	if !a.Valid() {
		return 0
	}
	return a.Float()
}
