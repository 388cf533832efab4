package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

var (
	ErrInvalidStatus = apperr.New(apperr.KindValidation, "invalid order status")
	ErrUnauthorized  = apperr.New(apperr.KindAuthorization, "you are not allowed to change this order")
	ErrAlreadyPaid   = apperr.New(apperr.KindConflict, "order is already paid")
)

// SetStatus moves an order to status on behalf of actor and appends one
// history entry. Any status may follow any other. Sellers must sell a line
// of the order; buyers may only cancel their own pending orders.
func (s *Service) SetStatus(ctx context.Context, orderID, status string, actor user.Session) (Order, error) {
	next := Status(status)
	if !next.Valid() {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !canSetStatus(o, next, actor) {
		return Order{}, ErrUnauthorized
	}
	if actor.IsSeller() && o.HasSeller(actor.UserID) {
		if err := s.requireApproved(ctx, actor.UserID); err != nil {
			return Order{}, err
		}
	}

	updated, err := s.repo.AppendStatus(ctx, orderID, HistoryEntry{
		Status:    next,
		Timestamp: s.now().UTC(),
		UpdatedBy: actor.UserID,
	})
	if err != nil {
		return Order{}, err
	}

	s.log.WithFields(logrus.Fields{
		"orderId": orderID,
		"from":    o.Status,
		"to":      next,
		"actor":   actor.UserID,
	}).Info("order status changed")
	s.publish(ctx, EventStatusChanged, updated, actor.UserID)
	return updated, nil
}

func canSetStatus(o Order, next Status, actor user.Session) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsSeller() && o.HasSeller(actor.UserID):
		return true
	}
	// Anyone else, including a seller buying from another shop, is treated
	// as the buyer.
	return next == StatusCancelled && o.UserID == actor.UserID && o.Status == StatusPending
}

// requireApproved checks the seller's current approval, not the one in
// their token.
func (s *Service) requireApproved(ctx context.Context, sellerID string) error {
	if s.users == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, sellerID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return ErrUnauthorized
	case err != nil:
		return err
	case !u.Approved:
		return user.ErrNotApproved
	}
	return nil
}

// MarkPaid records that an admin verified the order's payment reference.
func (s *Service) MarkPaid(ctx context.Context, orderID string, actor user.Session) (Order, error) {
	if !actor.IsAdmin() {
		return Order{}, ErrUnauthorized
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Payment.PaymentStatus == PaymentPaid {
		return Order{}, ErrAlreadyPaid
	}

	updated, err := s.repo.SetPaymentStatus(ctx, orderID, PaymentPaid, s.now().UTC())
	if err != nil {
		return Order{}, err
	}
	s.log.WithFields(logrus.Fields{"orderId": orderID, "actor": actor.UserID}).Info("order payment verified")
	s.publish(ctx, EventPaymentChanged, updated, actor.UserID)
	return updated, nil
}
