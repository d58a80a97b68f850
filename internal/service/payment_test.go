package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"cqwealth-client/internal/api"
	"cqwealth-client/internal/client"
	"cqwealth-client/internal/config"
	"cqwealth-client/internal/model"
	"cqwealth-client/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCheckout struct {
	calls  atomic.Int32
	opts   client.CheckoutOptions
	result *client.CheckoutResult
	err    error
}

func (f *fakeCheckout) Checkout(ctx context.Context, opts client.CheckoutOptions) (*client.CheckoutResult, error) {
	f.calls.Add(1)
	f.opts = opts
	return f.result, f.err
}

type backendStub struct {
	orderStatus    string
	orderBody      map[string]any
	verifyOK       bool
	verifyDenied   bool // answer 200 but success:false
	verifyCalls    atomic.Int32
	createCalls    atomic.Int32
	activationHits atomic.Int32
}

func (s *backendStub) mux() *http.ServeMux {
	order := func(w http.ResponseWriter, r *http.Request) {
		s.createCalls.Add(1)
		json.NewDecoder(r.Body).Decode(&s.orderBody)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"success": true,
			"data": map[string]any{
				"orderId":         "ord_1",
				"razorpayOrderId": "order_rzp_1",
				"amount":          29900,
				"currency":        "INR",
				"keyId":           "rzp_test_abc",
				"status":          s.orderStatus,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/payments/create-order", order)
	mux.HandleFunc("POST /api/payments/create-activation-order", func(w http.ResponseWriter, r *http.Request) {
		s.activationHits.Add(1)
		order(w, r)
	})
	mux.HandleFunc("POST /api/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		s.verifyCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case s.verifyDenied:
			w.Write([]byte(`{"success":false,"message":"Signature mismatch","data":{"paymentId":"pay_1","orderId":"ord_1","status":"failed"}}`))
		case s.verifyOK:
			w.Write([]byte(`{"success":true,"data":{"paymentId":"pay_1","orderId":"ord_1","status":"captured"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"message":"Signature mismatch"}`))
		}
	})
	return mux
}

func newPaymentService(t *testing.T, stub *backendStub, checkout *fakeCheckout) (PaymentService, *session.Manager) {
	t.Helper()
	srv := httptest.NewServer(stub.mux())
	t.Cleanup(srv.Close)

	mgr, err := session.NewManager(session.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mgr.Begin(model.User{
		ID:           "u1",
		Name:         "Asha",
		Email:        "asha@example.com",
		Phone:        "9999999999",
		ReferralCode: "CQ123",
	}, "tok123"))

	backend := client.NewBackend(&config.Backend{BaseURL: srv.URL}, mgr, zap.NewNop())
	svc := NewPaymentService(api.New(backend), checkout, mgr, config.Razorpay{
		KeyID:       "rzp_fallback",
		CompanyName: "CQ Wealth",
		ThemeColor:  "#D4AF37",
	}, zap.NewNop())
	return svc, mgr
}

func successCheckout() *fakeCheckout {
	return &fakeCheckout{result: &client.CheckoutResult{
		PaymentID: "pay_1",
		OrderID:   "order_rzp_1",
		Signature: "sig_1",
	}}
}

func TestPayHappyPath(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: true}
	checkout := successCheckout()
	svc, _ := newPaymentService(t, stub, checkout)

	outcome := svc.Pay(context.Background(), decimal.NewFromInt(299), "Starter Kit")
	require.True(t, outcome.Success)
	require.Equal(t, StateVerifiedSuccess, outcome.State)
	require.Equal(t, "Payment successful", outcome.Message)
	require.Equal(t, "pay_1", outcome.PaymentID)
	require.Equal(t, "captured", outcome.Status)

	// amount forwarded in minor units
	require.EqualValues(t, 29900, stub.orderBody["amount"])
	// checkout options come from the order and the session
	require.EqualValues(t, 1, checkout.calls.Load())
	require.Equal(t, "rzp_test_abc", checkout.opts.Key)
	require.Equal(t, "order_rzp_1", checkout.opts.OrderID)
	require.Equal(t, "asha@example.com", checkout.opts.Prefill.Email)
	require.Equal(t, "CQ Wealth", checkout.opts.Name)
	require.EqualValues(t, 1, stub.verifyCalls.Load())
}

func TestPayRejectsNonPositiveAmount(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: true}
	checkout := successCheckout()
	svc, _ := newPaymentService(t, stub, checkout)

	outcome := svc.Pay(context.Background(), decimal.Zero, "nothing")
	require.False(t, outcome.Success)
	require.Equal(t, StateOrderCreationFailed, outcome.State)
	require.EqualValues(t, 0, stub.createCalls.Load())
	require.EqualValues(t, 0, checkout.calls.Load())
}

func TestPayRejectsSubPaiseAmount(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: true}
	checkout := successCheckout()
	svc, _ := newPaymentService(t, stub, checkout)

	amount, err := decimal.NewFromString("10.005")
	require.NoError(t, err)

	outcome := svc.Pay(context.Background(), amount, "Top-up")
	require.False(t, outcome.Success)
	require.Equal(t, StateOrderCreationFailed, outcome.State)
	require.Equal(t, "Amount cannot have more than 2 decimal places", outcome.Message)
	require.EqualValues(t, 0, stub.createCalls.Load())

	// exactly two decimals converts without truncation
	amount, err = decimal.NewFromString("10.05")
	require.NoError(t, err)
	outcome = svc.Pay(context.Background(), amount, "Top-up")
	require.True(t, outcome.Success)
	require.EqualValues(t, 1005, stub.orderBody["amount"])
}

func TestOrderNotCreatedSkipsCheckout(t *testing.T) {
	stub := &backendStub{orderStatus: "pending", verifyOK: true}
	checkout := successCheckout()
	svc, _ := newPaymentService(t, stub, checkout)

	outcome := svc.Pay(context.Background(), decimal.NewFromInt(299), "Starter Kit")
	require.False(t, outcome.Success)
	require.Equal(t, StateOrderCreationFailed, outcome.State)
	require.Equal(t, "pending", outcome.Status)
	require.EqualValues(t, 0, checkout.calls.Load(), "vendor checkout must not open")
	require.EqualValues(t, 0, stub.verifyCalls.Load())
}

func TestCheckoutCancellationSkipsVerification(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: true}
	checkout := &fakeCheckout{err: client.ErrCheckoutCancelled}
	svc, _ := newPaymentService(t, stub, checkout)

	outcome := svc.Pay(context.Background(), decimal.NewFromInt(299), "Starter Kit")
	require.False(t, outcome.Success)
	require.Equal(t, StateCheckoutCancelled, outcome.State)
	require.Equal(t, "Payment cancelled or failed", outcome.Message)
	require.EqualValues(t, 0, stub.verifyCalls.Load(), "verification must not run")
}

func TestVerificationFailureKeepsPaymentID(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: false}
	checkout := successCheckout()
	svc, mgr := newPaymentService(t, stub, checkout)

	outcome := svc.ActivateMembership(context.Background())
	require.False(t, outcome.Success)
	require.Equal(t, StateVerifiedFailed, outcome.State)
	require.Equal(t, "Signature mismatch", outcome.Message)
	// the vendor kept the money; the payment id is the only client-side trace
	require.Equal(t, "pay_1", outcome.PaymentID)
	require.False(t, mgr.Activated())
}

func TestVerificationDeniedDespiteOKStatus(t *testing.T) {
	// the verify endpoint reports its decision in the body flag; a 200 with
	// success:false is still a denial
	stub := &backendStub{orderStatus: "created", verifyDenied: true}
	checkout := successCheckout()
	svc, mgr := newPaymentService(t, stub, checkout)

	outcome := svc.Pay(context.Background(), decimal.NewFromInt(299), "Starter Kit")
	require.False(t, outcome.Success)
	require.Equal(t, StateVerifiedFailed, outcome.State)
	require.Equal(t, "Signature mismatch", outcome.Message)
	require.Equal(t, "pay_1", outcome.PaymentID)
	require.False(t, mgr.Activated())
}

func TestActivationDeniedVerificationLeavesFlagOff(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyDenied: true}
	svc, mgr := newPaymentService(t, stub, successCheckout())

	outcome := svc.ActivateMembership(context.Background())
	require.False(t, outcome.Success)
	require.Equal(t, StateVerifiedFailed, outcome.State)
	require.False(t, mgr.Activated())
}

func TestActivationFlipsSessionFlag(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: true}
	checkout := successCheckout()
	svc, mgr := newPaymentService(t, stub, checkout)

	require.False(t, mgr.Activated())
	outcome := svc.ActivateMembership(context.Background())
	require.True(t, outcome.Success)
	require.Equal(t, StateVerifiedSuccess, outcome.State)
	require.EqualValues(t, 1, stub.activationHits.Load(), "activation uses its own endpoint")
	require.True(t, mgr.Activated())
}

func TestGenericPayDoesNotTouchActivationFlag(t *testing.T) {
	stub := &backendStub{orderStatus: "created", verifyOK: true}
	svc, mgr := newPaymentService(t, stub, successCheckout())

	outcome := svc.Pay(context.Background(), decimal.NewFromInt(100), "Top-up")
	require.True(t, outcome.Success)
	require.False(t, mgr.Activated())
	require.EqualValues(t, 0, stub.activationHits.Load())
}
