package service

import (
	"context"

	"cqwealth-client/internal/api"
	"cqwealth-client/internal/client"
	"cqwealth-client/internal/config"
	"cqwealth-client/internal/model"
	"cqwealth-client/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// State is the explicit payment machine the source app only implied:
//
//	idle → order_created → checkout_opened →
//	    verified_success | verified_failed | checkout_cancelled
//	idle → order_creation_failed
//
// There is no retry and no resumption; a failed attempt restarts from idle
// with a fresh order.
type State string

const (
	StateIdle                State = "idle"
	StateOrderCreated        State = "order_created"
	StateCheckoutOpened      State = "checkout_opened"
	StateVerifiedSuccess     State = "verified_success"
	StateVerifiedFailed      State = "verified_failed"
	StateCheckoutCancelled   State = "checkout_cancelled"
	StateOrderCreationFailed State = "order_creation_failed"
)

const (
	msgOrderCreateFailed = "Could not create payment order"
	msgCheckoutFailed    = "Payment cancelled or failed"
	msgVerifyFailed      = "Payment verification failed"
	msgPaymentSuccess    = "Payment successful"
)

// Outcome is the terminal result of one payment attempt. Nothing throws past
// the orchestrator; every stage reports through this shape.
type Outcome struct {
	Success   bool   `json:"success"`
	State     State  `json:"state"`
	Message   string `json:"message"`
	OrderID   string `json:"orderId,omitempty"`
	PaymentID string `json:"paymentId,omitempty"`
	Status    string `json:"status,omitempty"`
}

type PaymentService interface {
	// Pay runs the generic flow for a caller-supplied amount (major units).
	Pay(ctx context.Context, amount decimal.Decimal, description string) *Outcome
	// ActivateMembership runs the fixed-amount activation flow; the server
	// decides the amount. A verified payment flips the session access flag.
	ActivateMembership(ctx context.Context) *Outcome
}

type paymentServiceImpl struct {
	api      *api.Client
	checkout client.CheckoutClient
	session  *session.Manager
	vendor   config.Razorpay
	log      *zap.Logger
}

func NewPaymentService(
	apiClient *api.Client,
	checkout client.CheckoutClient,
	sess *session.Manager,
	vendor config.Razorpay,
	log *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		api:      apiClient,
		checkout: checkout,
		session:  sess,
		vendor:   vendor,
		log:      log,
	}
}

func (s *paymentServiceImpl) Pay(ctx context.Context, amount decimal.Decimal, description string) *Outcome {
	if !amount.IsPositive() {
		return &Outcome{State: StateOrderCreationFailed, Message: "Amount must be positive"}
	}
	if !amount.Equal(amount.Round(2)) {
		// anything below a paisa cannot be charged
		return &Outcome{State: StateOrderCreationFailed, Message: "Amount cannot have more than 2 decimal places"}
	}

	create := func(receipt string) (*model.PaymentOrder, error) {
		return s.api.CreatePaymentOrder(ctx, model.CreateOrderRequest{
			Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
			Currency: "INR",
			Receipt:  receipt,
		})
	}
	return s.run(ctx, create, description, false)
}

func (s *paymentServiceImpl) ActivateMembership(ctx context.Context) *Outcome {
	create := func(receipt string) (*model.PaymentOrder, error) {
		return s.api.CreateActivationOrder(ctx, model.ActivationOrderRequest{Receipt: receipt})
	}
	return s.run(ctx, create, "Membership activation", true)
}

func (s *paymentServiceImpl) run(
	ctx context.Context,
	create func(receipt string) (*model.PaymentOrder, error),
	description string,
	activation bool,
) *Outcome {
	receipt := "rcpt_" + uuid.NewString()

	order, err := create(receipt)
	if err != nil {
		return &Outcome{State: StateOrderCreationFailed, Message: failureMessage(err, msgOrderCreateFailed)}
	}
	if order.Status != model.OrderStatusCreated {
		s.log.Warn("order not in created state",
			zap.String("order_id", order.OrderID),
			zap.String("status", order.Status))
		return &Outcome{
			State:   StateOrderCreationFailed,
			Message: msgOrderCreateFailed,
			OrderID: order.OrderID,
			Status:  order.Status,
		}
	}

	key := order.KeyID
	if key == "" {
		key = s.vendor.KeyID
	}
	opts := client.CheckoutOptions{
		Key:         key,
		Amount:      order.Amount,
		Currency:    order.Currency,
		OrderID:     order.VendorOrderID,
		Name:        s.vendor.CompanyName,
		Description: description,
		Theme:       client.CheckoutTheme{Color: s.vendor.ThemeColor},
	}
	if user := s.session.Current(); user != nil {
		opts.Prefill = client.CheckoutPrefill{
			Name:    user.DisplayName(),
			Email:   user.Email,
			Contact: user.Phone,
		}
	}

	result, err := s.checkout.Checkout(ctx, opts)
	if err != nil {
		// user cancelled or the vendor UI failed; the server is not
		// contacted again for this attempt
		s.log.Info("checkout did not complete",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		return &Outcome{
			State:   StateCheckoutCancelled,
			Message: msgCheckoutFailed,
			OrderID: order.OrderID,
		}
	}

	verification, err := s.api.VerifyPayment(ctx, model.VerifyPaymentRequest{
		RazorpayOrderID:   result.OrderID,
		RazorpayPaymentID: result.PaymentID,
		RazorpaySignature: result.Signature,
	})
	if err != nil {
		// the vendor took the payment but verification did not confirm it;
		// the payment id is surfaced so backend reconciliation can find the
		// attempt, the client keeps no record of it
		return &Outcome{
			State:     StateVerifiedFailed,
			Message:   failureMessage(err, msgVerifyFailed),
			OrderID:   order.OrderID,
			PaymentID: result.PaymentID,
		}
	}

	if activation {
		if err := s.session.MarkActivated(); err != nil {
			s.log.Error("payment verified but session flag not saved", zap.Error(err))
		}
	}

	s.log.Info("payment verified",
		zap.String("order_id", order.OrderID),
		zap.String("payment_id", result.PaymentID))

	return &Outcome{
		Success:   true,
		State:     StateVerifiedSuccess,
		Message:   msgPaymentSuccess,
		OrderID:   order.OrderID,
		PaymentID: result.PaymentID,
		Status:    verification.Status,
	}
}

// failureMessage prefers the server-reported message over the stage default.
func failureMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
