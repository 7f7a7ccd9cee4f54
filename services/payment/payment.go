package payment

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/classroom"
)

const (
	ProviderOffline  = "offline"
	ProviderMidtrans = "midtrans"
)

var ErrInvalidAmount = errors.New("invalid fee amount")

// Offline accepts every payment immediately.
type Offline struct{}

var _ classroom.PaymentGateway = Offline{}

func (Offline) Charge(ctx context.Context, fee classroom.Fee, method classroom.PaymentMethod) (classroom.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return classroom.Receipt{}, err
	}
	if fee.Amount <= 0 {
		return classroom.Receipt{}, ErrInvalidAmount
	}
	return classroom.Receipt{Reference: "offline-" + shortID(), Settled: true}, nil
}

func (Offline) Confirm(ctx context.Context, reference string) (classroom.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return classroom.Receipt{}, err
	}
	return classroom.Receipt{Reference: reference, Settled: true}, nil
}

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type statusAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// Midtrans opens a Snap checkout per payment attempt. The order id is the reference;
// the fee settles once the transaction status says so.
type Midtrans struct {
	snap   snapAPI
	status statusAPI
	logger core.Logger
}

var _ classroom.PaymentGateway = (*Midtrans)(nil)

func NewMidtrans(conf core.PaymentConfig, logger core.Logger) *Midtrans {
	env := midtrans.Sandbox
	if conf.Production {
		env = midtrans.Production
	}
	var (
		snapClient snap.Client
		coreClient coreapi.Client
	)
	snapClient.New(conf.MidtransServerKey, env)
	coreClient.New(conf.MidtransServerKey, env)
	return &Midtrans{snap: &snapClient, status: &coreClient, logger: logger}
}

func (m *Midtrans) Charge(ctx context.Context, fee classroom.Fee, method classroom.PaymentMethod) (classroom.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return classroom.Receipt{}, err
	}
	amount := int64(math.Round(fee.Amount))
	if amount <= 0 {
		return classroom.Receipt{}, ErrInvalidAmount
	}

	// order ids are single use, so every attempt gets its own
	orderID := fee.ID + "-" + shortID()
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       fee.ID,
			Price:    amount,
			Qty:      1,
			Name:     truncate(fee.Description, 50),
			Category: "Fee",
		}},
		CustomField1: string(method),
	}
	if method == classroom.PayByCard {
		req.CreditCard = &snap.CreditCardDetails{Secure: true}
	}

	res, mErr := m.snap.CreateTransaction(req)
	if mErr != nil {
		m.logger.Error("creating Midtrans transaction", mErr, map[string]interface{}{"fee_id": fee.ID})
		return classroom.Receipt{}, errors.Wrap(mErr, fmt.Sprintf("creating transaction: %s", mErr.Message))
	}
	return classroom.Receipt{Reference: orderID, RedirectURL: res.RedirectURL}, nil
}

// Confirm reads the transaction status of an order.
func (m *Midtrans) Confirm(ctx context.Context, reference string) (classroom.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return classroom.Receipt{}, err
	}
	res, mErr := m.status.CheckTransaction(reference)
	if mErr != nil {
		if mErr.StatusCode == http.StatusNotFound {
			// the payer never opened the checkout
			return classroom.Receipt{Reference: reference}, nil
		}
		m.logger.Error("checking Midtrans transaction", mErr, map[string]interface{}{"order_id": reference})
		return classroom.Receipt{}, errors.Wrap(mErr, fmt.Sprintf("checking transaction: %s", mErr.Message))
	}

	receipt := classroom.Receipt{Reference: reference}
	switch strings.ToLower(res.TransactionStatus) {
	case "settlement":
		receipt.Settled = true
	case "capture":
		// card payments: only accepted captures are final
		switch strings.ToLower(res.FraudStatus) {
		case "accept":
			receipt.Settled = true
		case "challenge":
		default:
			return receipt, errors.Wrap(classroom.ErrPaymentFailed, "capture rejected")
		}
	case "deny", "cancel", "expire", "failure":
		return receipt, errors.Wrap(classroom.ErrPaymentFailed, res.TransactionStatus)
	}
	return receipt, nil
}

// NewGateway returns the gateway selected by conf.Provider.
func NewGateway(conf core.PaymentConfig, logger core.Logger) classroom.PaymentGateway {
	if conf.Provider == ProviderMidtrans && conf.MidtransServerKey != "" {
		return NewMidtrans(conf, logger)
	}
	return Offline{}
}

// truncate keeps at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
