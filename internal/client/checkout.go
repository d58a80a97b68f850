package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"cqwealth-client/internal/config"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrCheckoutCancelled reports that the user dismissed the vendor checkout
// without paying.
var ErrCheckoutCancelled = errors.New("checkout cancelled by user")

// CheckoutOptions is the option object handed to the Razorpay checkout.
type CheckoutOptions struct {
	Key         string          `json:"key"`
	Amount      int64           `json:"amount"` // minor units (paise)
	Currency    string          `json:"currency"`
	OrderID     string          `json:"order_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Prefill     CheckoutPrefill `json:"prefill"`
	Theme       CheckoutTheme   `json:"theme"`
}

type CheckoutPrefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type CheckoutTheme struct {
	Color string `json:"color"`
}

// CheckoutResult is the vendor's success callback payload.
type CheckoutResult struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// CheckoutClient opens the vendor checkout for an order and blocks until the
// user completes or abandons it. Cancellation is only ever user- or
// ctx-driven; the vendor UI itself has no deadline.
type CheckoutClient interface {
	Checkout(ctx context.Context, opts CheckoutOptions) (*CheckoutResult, error)
}

// HostedCheckout serves the Razorpay web checkout on a localhost listener and
// waits for the result callback, the browser-side counterpart of the mobile
// SDK's modal.
type HostedCheckout struct {
	host string
	port int
	log  *zap.Logger
}

func NewHostedCheckout(cfg *config.Checkout, log *zap.Logger) *HostedCheckout {
	return &HostedCheckout{
		host: cfg.Host,
		port: cfg.Port,
		log:  log,
	}
}

const checkoutPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>%s</title>
  <script src="https://checkout.razorpay.com/v1/checkout.js"></script>
</head>
<body>
<script>
  var options = %s;
  options.handler = function (resp) {
    fetch('/callback', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(resp)
    }).then(function () {
      document.body.innerText = 'Payment submitted. You can return to the app.';
    });
  };
  options.modal = {
    ondismiss: function () { fetch('/cancel', {method: 'POST'}); }
  };
  new Razorpay(options).open();
</script>
</body>
</html>`

func (h *HostedCheckout) Checkout(ctx context.Context, opts CheckoutOptions) (*CheckoutResult, error) {
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout options: %w", err)
	}
	page := fmt.Sprintf(checkoutPage, opts.Name, optsJSON)

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", h.host, h.port))
	if err != nil {
		return nil, fmt.Errorf("start checkout listener: %w", err)
	}

	resultCh := make(chan *CheckoutResult, 1)
	cancelCh := make(chan struct{}, 1)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})
	e.POST("/callback", func(c echo.Context) error {
		var res CheckoutResult
		if err := c.Bind(&res); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid checkout callback")
		}
		if res.PaymentID == "" || res.Signature == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "incomplete checkout callback")
		}
		select {
		case resultCh <- &res:
		default:
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "received"})
	})
	e.POST("/cancel", func(c echo.Context) error {
		select {
		case cancelCh <- struct{}{}:
		default:
		}
		return c.NoContent(http.StatusNoContent)
	})

	e.Listener = ln
	go func() {
		if err := e.Start(""); err != nil && err != http.ErrServerClosed {
			h.log.Warn("checkout listener stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			e.Close()
		}
	}()

	h.log.Info("checkout ready, open in a browser to pay",
		zap.String("url", "http://"+ln.Addr().String()),
		zap.String("order_id", opts.OrderID))

	select {
	case res := <-resultCh:
		return res, nil
	case <-cancelCh:
		return nil, ErrCheckoutCancelled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
