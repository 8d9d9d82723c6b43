package backoffice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/models"
	"github.com/SaugatGautam100/courseplex-sub001/notify"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

// ReviewKYC approves or rejects a pending KYC submission and mirrors the
// outcome onto the user record.
func (s *Service) ReviewKYC(ctx context.Context, uid string, approve bool, reason string, now time.Time) error {
	var req models.KYCRequest
	if _, err := s.load(ctx, store.JoinPath(models.KYCRequestsPath, uid), &req, false); err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return fmt.Errorf("%w: kyc %s is %q", ErrInvalidTransition, uid, req.Status)
	}
	var user models.User
	if _, err := s.load(ctx, store.JoinPath(models.UsersPath, uid), &user, true); err != nil {
		return err
	}

	status, kind := models.RequestApproved, notify.KindKYCApproved
	if !approve {
		status, kind = models.RequestRejected, notify.KindKYCRejected
	}
	reviewed := models.TimestampOf(now)
	var reasonValue any
	if reason != "" {
		reasonValue = reason
	}

	err := s.st.Update(ctx, map[string]any{
		store.JoinPath(models.KYCRequestsPath, uid, "status"):      status,
		store.JoinPath(models.KYCRequestsPath, uid, "reason"):      reasonValue,
		store.JoinPath(models.KYCRequestsPath, uid, "reviewedAt"):  reviewed,
		store.JoinPath(models.UsersPath, uid, "kyc", "status"):     status,
		store.JoinPath(models.UsersPath, uid, "kyc", "reason"):     reasonValue,
		store.JoinPath(models.UsersPath, uid, "kyc", "reviewedAt"): reviewed,
	})
	if err != nil {
		return fmt.Errorf("review kyc %s: %w", uid, err)
	}

	s.log.Info("🪪 kyc reviewed", zap.String("user_id", uid), zap.String("status", status))
	s.notifier.Dispatch(notify.Message{
		Kind:    kind,
		ToEmail: user.Email,
		ToName:  user.Name,
		Data:    map[string]any{"reason": reason},
	})
	return nil
}

// ApproveWithdrawal marks a pending payout request approved and deducts it
// from the user's balance.
func (s *Service) ApproveWithdrawal(ctx context.Context, uid, requestID string, now time.Time) error {
	var req models.WithdrawalRequest
	if _, err := s.load(ctx, store.JoinPath(models.WithdrawalRequestsPath, uid, requestID), &req, false); err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return fmt.Errorf("%w: withdrawal %s/%s is %q", ErrInvalidTransition, uid, requestID, req.Status)
	}
	if !req.Amount.Valid() || req.Amount.Float() <= 0 {
		return fmt.Errorf("%w: withdrawal %s/%s", ErrInvalidAmount, uid, requestID)
	}
	var user models.User
	if _, err := s.load(ctx, store.JoinPath(models.UsersPath, uid), &user, false); err != nil {
		return err
	}
	balance := orZero(user.Balance)
	if balance < req.Amount.Float() {
		return fmt.Errorf("%w: balance %.0f, requested %.0f", ErrInsufficientBalance, balance, req.Amount.Float())
	}

	err := s.st.Update(ctx, map[string]any{
		store.JoinPath(models.WithdrawalRequestsPath, uid, requestID, "status"):      models.RequestApproved,
		store.JoinPath(models.WithdrawalRequestsPath, uid, requestID, "processedAt"): models.TimestampOf(now),
		store.JoinPath(models.UsersPath, uid, "balance"):                             balance - req.Amount.Float(),
	})
	if err != nil {
		return fmt.Errorf("approve withdrawal %s/%s: %w", uid, requestID, err)
	}

	s.log.Info("💸 withdrawal approved",
		zap.String("user_id", uid),
		zap.String("request_id", requestID),
		zap.Float64("amount", req.Amount.Float()))
	s.notifier.Dispatch(notify.Message{
		Kind:    notify.KindWithdrawalApproved,
		ToEmail: user.Email,
		ToName:  user.Name,
		Data:    map[string]any{"amount": req.Amount.Float(), "method": req.Method, "account": req.Account},
	})
	return nil
}
