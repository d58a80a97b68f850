package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"cqwealth-client/internal/api"
	"cqwealth-client/internal/client"
	"cqwealth-client/internal/config"
	"cqwealth-client/internal/earnings"
	"cqwealth-client/internal/logging"
	"cqwealth-client/internal/model"
	"cqwealth-client/internal/service"
	"cqwealth-client/internal/session"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// form-level minimums per payout method, mirroring the app's withdrawal form
var withdrawalMinimums = map[string]decimal.Decimal{
	"upi":  decimal.NewFromInt(100),
	"bank": decimal.NewFromInt(500),
}

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	session  *session.Manager
	api      *api.Client
	payments service.PaymentService
}

// errPaymentFailed marks a payment outcome already reported to the user;
// the process still exits non-zero but nothing more is printed.
var errPaymentFailed = errors.New("payment failed")

func main() {
	os.Exit(run())
}

func run() int {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(cfg.Environment.Name, cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	db, err := client.OpenSessionDB(cfg.Session.DBPath)
	if err != nil {
		return commandExitCode(err)
	}
	mgr, err := session.NewManager(session.NewGormStore(db), log)
	if err != nil {
		return commandExitCode(err)
	}
	if expired, err := mgr.ForceLogoutIfExpired(); err != nil {
		return commandExitCode(err)
	} else if expired {
		fmt.Println("Your session expired, please sign in again.")
	}

	backend := client.NewBackend(&cfg.Backend, mgr, log)
	apiClient := api.New(backend)
	checkout := client.NewHostedCheckout(&cfg.Checkout, log)
	payments := service.NewPaymentService(apiClient, checkout, mgr, cfg.Razorpay, log)

	a := &app{cfg: cfg, log: log, session: mgr, api: apiClient, payments: payments}

	if len(os.Args) < 2 {
		usage()
		return 2
	}

	ctx := context.Background()
	return commandExitCode(a.dispatch(ctx, os.Args[1], os.Args[2:]))
}

// commandExitCode maps a command result to the process exit code, printing
// the failure unless the command already reported it.
func commandExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errPaymentFailed) {
		return 1
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.Kind == client.KindHTTPStatus && apiErr.Status == 401 {
		fmt.Fprintln(os.Stderr, "Your session was rejected. Run 'wealthcli logout' and sign in again.")
	}
	return 1
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "verify-otp":
		return a.cmdVerifyOTP(ctx, args)
	case "resend-otp":
		return a.cmdResendOTP(ctx, args)
	case "forgot-password":
		return a.cmdForgotPassword(ctx, args)
	case "reset-password":
		return a.cmdResetPassword(ctx, args)
	case "profile":
		return a.cmdProfile(ctx)
	case "dashboard":
		return a.cmdDashboard(ctx)
	case "earnings":
		return a.cmdEarnings(ctx)
	case "team":
		return a.fetch(ctx, func() (any, error) { return a.api.GetTeam(ctx) })
	case "products":
		return a.fetch(ctx, func() (any, error) { return a.api.GetProducts(ctx) })
	case "withdrawals":
		return a.fetch(ctx, func() (any, error) { return a.api.GetWithdrawals(ctx) })
	case "withdraw":
		return a.cmdWithdraw(ctx, args)
	case "rewards":
		return a.fetch(ctx, func() (any, error) { return a.api.GetRewards(ctx) })
	case "terms":
		return a.fetch(ctx, func() (any, error) { return a.api.GetTerms(ctx) })
	case "activate":
		return a.cmdActivate(ctx)
	case "pay":
		return a.cmdPay(ctx, args)
	case "logout":
		return a.session.Logout()
	case "health":
		return a.fetch(ctx, func() (any, error) { return a.api.Health(ctx) })
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}

	data, err := a.api.Login(ctx, model.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := a.session.Begin(data.User, data.Token); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (referral code %s)\n", data.User.DisplayName(), data.User.ReferralCode)
	if !data.User.PaymentCompleted {
		fmt.Println("Membership is not active yet. Run 'wealthcli activate' to unlock your account.")
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	password := fs.String("password", "", "password (min 6 chars)")
	referral := fs.String("referral", "", "referral code of your sponsor")
	fs.Parse(args)
	if *name == "" || *email == "" || *phone == "" {
		return fmt.Errorf("name, email and phone are required")
	}
	if len(*password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	data, err := a.api.Register(ctx, model.RegisterRequest{
		Name:         *name,
		Email:        *email,
		Phone:        *phone,
		Password:     *password,
		ReferralCode: *referral,
	})
	if err != nil {
		return err
	}
	if data.OTPRequired {
		fmt.Println("Registered. Check your email for the OTP, then run 'wealthcli verify-otp'.")
	}
	return nil
}

func (a *app) cmdVerifyOTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify-otp", flag.ExitOnError)
	email := fs.String("email", "", "email")
	otp := fs.String("otp", "", "one-time code")
	fs.Parse(args)
	if *email == "" || *otp == "" {
		return fmt.Errorf("email and otp are required")
	}

	data, err := a.api.VerifyOTP(ctx, model.VerifyOTPRequest{Email: *email, OTP: *otp})
	if err != nil {
		return err
	}
	if data.Token != "" {
		if err := a.session.Begin(data.User, data.Token); err != nil {
			return err
		}
	}
	fmt.Println("Account verified.")
	return nil
}

func (a *app) cmdResendOTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resend-otp", flag.ExitOnError)
	email := fs.String("email", "", "email")
	fs.Parse(args)
	if *email == "" {
		return fmt.Errorf("email is required")
	}
	if err := a.api.ResendOTP(ctx, *email); err != nil {
		return err
	}
	fmt.Println("OTP resent.")
	return nil
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "email")
	fs.Parse(args)
	if *email == "" {
		return fmt.Errorf("email is required")
	}
	if err := a.api.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Println("Reset OTP sent to your email.")
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "email")
	otp := fs.String("otp", "", "one-time code")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	fs.Parse(args)
	if len(*password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if *password != *confirm {
		return fmt.Errorf("passwords do not match")
	}
	if err := a.api.ResetPassword(ctx, model.ResetPasswordRequest{
		Email: *email, OTP: *otp, NewPassword: *password,
	}); err != nil {
		return err
	}
	fmt.Println("Password reset. Sign in with your new password.")
	return nil
}

func (a *app) cmdProfile(ctx context.Context) error {
	user, err := a.api.GetProfile(ctx)
	if err != nil {
		return err
	}
	if a.session.SignedIn() {
		if err := a.session.Refresh(*user); err != nil {
			a.log.Warn("profile fetched but session not refreshed", zap.Error(err))
		}
	}
	return printJSON(user)
}

func (a *app) cmdDashboard(ctx context.Context) error {
	dash, earn, err := a.api.Overview(ctx)
	if err != nil {
		return err
	}
	if err := printJSON(dash); err != nil {
		return err
	}
	fmt.Printf("Total earnings: %s\n", earnings.DisplayTotal(*earn).StringFixed(2))
	return nil
}

func (a *app) cmdEarnings(ctx context.Context) error {
	snap, err := a.api.GetEarnings(ctx)
	if err != nil {
		return err
	}
	return printJSON(earnings.NewBreakdown(*snap))
}

func (a *app) cmdWithdraw(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	amountStr := fs.String("amount", "", "amount to withdraw")
	method := fs.String("method", "upi", "payout method (upi|bank)")
	description := fs.String("description", "", "optional note")
	fs.Parse(args)

	amount, err := decimal.NewFromString(*amountStr)
	if err != nil {
		return fmt.Errorf("invalid amount %q", *amountStr)
	}
	minimum, ok := withdrawalMinimums[*method]
	if !ok {
		return fmt.Errorf("unknown payout method %q", *method)
	}
	if amount.LessThan(minimum) {
		return fmt.Errorf("minimum withdrawal via %s is %s", *method, minimum.StringFixed(2))
	}

	w, err := a.api.RequestWithdrawal(ctx, model.WithdrawalRequest{
		Amount:      amount,
		Method:      *method,
		Description: *description,
	})
	if err != nil {
		return err
	}
	return printJSON(w)
}

func (a *app) cmdActivate(ctx context.Context) error {
	if a.session.Activated() {
		fmt.Println("Membership is already active.")
		return nil
	}
	outcome := a.payments.ActivateMembership(ctx)
	if err := printJSON(outcome); err != nil {
		return err
	}
	if !outcome.Success {
		return errPaymentFailed
	}
	return nil
}

func (a *app) cmdPay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	amountStr := fs.String("amount", "", "amount in rupees")
	description := fs.String("description", "CQ Wealth purchase", "what the payment is for")
	fs.Parse(args)

	amount, err := decimal.NewFromString(*amountStr)
	if err != nil {
		return fmt.Errorf("invalid amount %q", *amountStr)
	}

	outcome := a.payments.Pay(ctx, amount, *description)
	if err := printJSON(outcome); err != nil {
		return err
	}
	if !outcome.Success {
		return errPaymentFailed
	}
	return nil
}

func (a *app) fetch(_ context.Context, f func() (any, error)) error {
	v, err := f()
	if err != nil {
		return err
	}
	return printJSON(v)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func usage() {
	fmt.Println(`Usage: wealthcli <command> [flags]

Commands:
  login, register, verify-otp, resend-otp, forgot-password, reset-password
  profile, dashboard, earnings, team, products, rewards, terms
  withdraw, withdrawals
  activate, pay
  logout, health`)
}
