package classroom

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

const feesLink = "/profile"

// CreateFee bills every listed student and notifies each of them.
func (svc *Service) CreateFee(nf NewFee) ([]Fee, error) {
	nf.Description = core.CleanString(nf.Description)
	if err := svc.validate.Struct(nf); err != nil {
		return nil, err
	}

	var fees []Fee
	err := svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		if _, _, ok := findCourse(t.courses, nf.CourseID); !ok {
			return ErrNotFound
		}
		fees = make([]Fee, 0, len(nf.StudentIDs))
		for _, sid := range nf.StudentIDs {
			fees = append(fees, Fee{
				ID:          newID("fee"),
				StudentID:   sid,
				CourseID:    nf.CourseID,
				Description: nf.Description,
				Amount:      nf.Amount,
				DueDate:     nf.DueDate,
				Status:      FeeUnpaid,
			})
		}
		t.fees = appendTo(t.fees, fees...)
		t.touch(KeyFees)

		msg := fmt.Sprintf("A new fee of $%s for %q has been assigned.", strconv.FormatFloat(nf.Amount, 'f', -1, 64), nf.Description)
		t.notify(nf.StudentIDs, msg, feesLink)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fees, nil
}

func validPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PayByCard, PayByGooglePay, PayByPhonePe, PayByPaytm:
		return true
	}
	return false
}

// PayFee charges one of the signed-in student's fees through the payment gateway.
// The fee is Paid only when the gateway reports the money settled; otherwise it stays
// Unpaid with the payment reference and URL recorded for ConfirmFeePayment.
func (svc *Service) PayFee(ctx context.Context, feeID string, method PaymentMethod) (Fee, error) {
	if !validPaymentMethod(method) {
		return Fee{}, core.NewValidationError(
			fmt.Errorf("unknown payment method %q", method),
			core.FieldError{Field: "payment_method", Error: "payment_method must be one of Card, Google Pay, PhonePe, Paytm"},
		)
	}

	// check before charging; the gateway call must not hold the store lock
	me, fee, err := svc.ownFee(feeID)
	if err != nil {
		return Fee{}, err
	}
	if fee.AwaitingPayment() {
		return Fee{}, ErrPaymentPending
	}

	receipt := Receipt{Settled: true}
	if svc.payments != nil {
		if receipt, err = svc.payments.Charge(ctx, fee, method); err != nil {
			return Fee{}, errors.Wrap(err, "charging fee")
		}
	}

	var updated Fee
	err = svc.write(func(t *tx) error {
		i, ok := indexOf(t.fees, func(f Fee) bool { return f.ID == feeID })
		if !ok {
			return ErrNotFound
		}
		updated = t.fees[i]
		if updated.Status == FeePaid {
			return ErrFeeAlreadyPaid
		}
		if updated.AwaitingPayment() {
			return ErrPaymentPending
		}
		updated.PaymentMethod = method
		updated.PaymentReference = receipt.Reference
		if receipt.Settled {
			markPaid(&updated)
		} else {
			updated.PaymentURL = receipt.RedirectURL
		}
		t.fees = replaceAt(t.fees, i, updated)
		t.touch(KeyFees)
		return nil
	})
	if err != nil {
		if receipt.Reference != "" {
			svc.logger.Error(fmt.Sprintf("fee %s charged (ref %s) but not recorded", feeID, receipt.Reference), err, me)
		}
		return Fee{}, err
	}
	return updated.clone(), nil
}

// ConfirmFeePayment asks the gateway whether a pending payment settled, and marks the fee Paid if so.
// A failed payment is cleared so the fee can be paid again.
func (svc *Service) ConfirmFeePayment(ctx context.Context, feeID string) (Fee, error) {
	_, fee, err := svc.ownFee(feeID)
	if err != nil {
		return Fee{}, err
	}
	if !fee.AwaitingPayment() || svc.payments == nil {
		return Fee{}, ErrPaymentPending
	}

	receipt, cerr := svc.payments.Confirm(ctx, fee.PaymentReference)
	failed := errors.Is(cerr, ErrPaymentFailed)
	if cerr != nil && !failed {
		return Fee{}, errors.Wrap(cerr, "confirming payment")
	}
	if !failed && !receipt.Settled {
		return Fee{}, ErrPaymentPending
	}

	var updated Fee
	err = svc.write(func(t *tx) error {
		i, ok := indexOf(t.fees, func(f Fee) bool { return f.ID == feeID })
		if !ok {
			return ErrNotFound
		}
		updated = t.fees[i]
		if updated.Status == FeePaid || updated.PaymentReference != fee.PaymentReference {
			return nil
		}
		if failed {
			updated.PaymentReference, updated.PaymentURL, updated.PaymentMethod = "", "", ""
		} else {
			markPaid(&updated)
		}
		t.fees = replaceAt(t.fees, i, updated)
		t.touch(KeyFees)
		return nil
	})
	if err != nil {
		return Fee{}, err
	}
	if failed {
		return Fee{}, cerr
	}
	return updated.clone(), nil
}

// ownFee returns the signed-in student and one of their fees, read from the current snapshot.
func (svc *Service) ownFee(feeID string) (user.User, Fee, error) {
	st := svc.store.snapshot()
	me, err := authorize(&st, user.RoleStudent)
	if err != nil {
		return user.User{}, Fee{}, err
	}
	i, ok := indexOf(st.fees, func(f Fee) bool { return f.ID == feeID })
	if !ok {
		return user.User{}, Fee{}, ErrNotFound
	}
	fee := st.fees[i]
	if fee.StudentID != me.ID {
		return user.User{}, Fee{}, ErrPermissionDenied
	}
	if fee.Status == FeePaid {
		return me, fee, ErrFeeAlreadyPaid
	}
	return me, fee, nil
}

func markPaid(f *Fee) {
	paidAt := now()
	f.Status = FeePaid
	f.PaymentDate = &paidAt
	f.PaymentURL = ""
}
