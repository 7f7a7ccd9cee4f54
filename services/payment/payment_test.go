package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/classroom"
	"github.com/trezcool/smartlearn/services/logger"
)

type snapMock struct {
	got *snap.Request
	err *midtrans.Error
}

func (m *snapMock) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &snap.Response{Token: "snap-token-1", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-1"}, nil
}

type statusMock struct {
	res map[string]*coreapi.TransactionStatusResponse
}

func (m *statusMock) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
	if res, ok := m.res[orderID]; ok {
		return res, nil
	}
	return nil, &midtrans.Error{Message: "Transaction doesn't exist.", StatusCode: 404}
}

var tuition = classroom.Fee{ID: "fee-1", StudentID: "user-1", Description: "Tuition", Amount: 120.5, Status: classroom.FeeUnpaid}

func TestOffline_Charge(t *testing.T) {
	receipt, err := Offline{}.Charge(context.Background(), tuition, classroom.PayByCard)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.Reference, "offline-"))
	assert.True(t, receipt.Settled)

	confirmed, err := Offline{}.Confirm(context.Background(), receipt.Reference)
	require.NoError(t, err)
	assert.True(t, confirmed.Settled)

	_, err = Offline{}.Charge(context.Background(), classroom.Fee{ID: "fee-2"}, classroom.PayByCard)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Offline{}.Charge(ctx, tuition, classroom.PayByCard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMidtrans_Charge(t *testing.T) {
	mock := &snapMock{}
	gw := &Midtrans{snap: mock, status: &statusMock{}, logger: logsvc.NewNopLogger()}

	receipt, err := gw.Charge(context.Background(), tuition, classroom.PayByCard)
	require.NoError(t, err)
	assert.False(t, receipt.Settled, "a fresh checkout has not been paid")
	assert.Equal(t, "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-1", receipt.RedirectURL)
	require.NotNil(t, mock.got)
	assert.Equal(t, receipt.Reference, mock.got.TransactionDetails.OrderID)
	assert.True(t, strings.HasPrefix(receipt.Reference, "fee-1-"))
	assert.Equal(t, "fee-1", (*mock.got.Items)[0].ID)
	assert.Equal(t, int64(121), mock.got.TransactionDetails.GrossAmt)
	assert.NotNil(t, mock.got.CreditCard)
	assert.Equal(t, "Card", mock.got.CustomField1)
}

func TestMidtrans_ChargeError(t *testing.T) {
	mock := &snapMock{err: &midtrans.Error{Message: "Access denied", StatusCode: 401}}
	gw := &Midtrans{snap: mock, status: &statusMock{}, logger: logsvc.NewNopLogger()}

	_, err := gw.Charge(context.Background(), tuition, classroom.PayByPaytm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access denied")
	assert.Nil(t, mock.got.CreditCard)
}

func TestMidtrans_Confirm(t *testing.T) {
	status := &statusMock{res: map[string]*coreapi.TransactionStatusResponse{
		"fee-1-pending":    {TransactionStatus: "pending"},
		"fee-1-settled":    {TransactionStatus: "settlement"},
		"fee-1-captured":   {TransactionStatus: "capture", FraudStatus: "accept"},
		"fee-1-challenged": {TransactionStatus: "capture", FraudStatus: "challenge"},
		"fee-1-denied":     {TransactionStatus: "capture", FraudStatus: "deny"},
		"fee-1-expired":    {TransactionStatus: "expire"},
	}}
	gw := &Midtrans{snap: &snapMock{}, status: status, logger: logsvc.NewNopLogger()}

	tests := []struct {
		ref         string
		wantSettled bool
		wantFailed  bool
	}{
		{ref: "fee-1-unopened"},
		{ref: "fee-1-pending"},
		{ref: "fee-1-settled", wantSettled: true},
		{ref: "fee-1-captured", wantSettled: true},
		{ref: "fee-1-challenged"},
		{ref: "fee-1-denied", wantFailed: true},
		{ref: "fee-1-expired", wantFailed: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			receipt, err := gw.Confirm(context.Background(), tt.ref)
			if tt.wantFailed {
				assert.ErrorIs(t, err, classroom.ErrPaymentFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ref, receipt.Reference)
			assert.Equal(t, tt.wantSettled, receipt.Settled)
		})
	}
}

func Test_truncate(t *testing.T) {
	assert.Equal(t, "Tuition", truncate("Tuition", 50))
	assert.Equal(t, "Frais de scolarité", truncate("Frais de scolarité 2024", 18))
	assert.Equal(t, "日本語", truncate("日本語の授業料", 3))
}

func TestNewGateway(t *testing.T) {
	logger := logsvc.NewNopLogger()
	assert.IsType(t, Offline{}, NewGateway(core.PaymentConfig{Provider: ProviderOffline}, logger))
	assert.IsType(t, Offline{}, NewGateway(core.PaymentConfig{Provider: ProviderMidtrans}, logger))
	assert.IsType(t, &Midtrans{}, NewGateway(core.PaymentConfig{Provider: ProviderMidtrans, MidtransServerKey: "SB-key"}, logger))
}
