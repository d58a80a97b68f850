package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User mirrors the backend's member record. FullName is the legacy field
// some endpoints still populate instead of Name.
type User struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	FullName         string          `json:"fullName,omitempty"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	ReferralCode     string          `json:"referralCode"`
	PaymentCompleted bool            `json:"paymentCompleted"`
	WalletBalance    decimal.Decimal `json:"walletBalance"`
}

// DisplayName prefers the current field over the legacy one.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.FullName
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type RegisterData struct {
	UserID      string `json:"userId"`
	OTPRequired bool   `json:"otpRequired"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type DashboardSummary struct {
	WalletBalance  decimal.Decimal `json:"walletBalance"`
	TotalReferrals int             `json:"totalReferrals"`
	ActiveMembers  int             `json:"activeMembers"`
	ReferralCode   string          `json:"referralCode"`
	RankName       string          `json:"rankName,omitempty"`
}

// EarningsSnapshot carries the two source commission totals plus the legacy
// wallet aggregate some accounts still report.
type EarningsSnapshot struct {
	PendingCommissions    decimal.Decimal `json:"pendingCommissions"`
	TotalCommissions      decimal.Decimal `json:"totalCommissions"`
	WalletCommissionTotal decimal.Decimal `json:"walletCommissionTotal"`
	LifetimeEarnings      decimal.Decimal `json:"lifetimeEarnings,omitempty"`
}

type TeamMember struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Level    int       `json:"level"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Team struct {
	TotalMembers int          `json:"totalMembers"`
	Members      []TeamMember `json:"members"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	InStock     bool            `json:"inStock"`
}

// Withdrawal status strings come from the backend verbatim; the client only
// displays them.
type Withdrawal struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	RequestedAt time.Time       `json:"requestedAt"`
}

type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Description string          `json:"description,omitempty"`
}

type Reward struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Unlocked bool            `json:"unlocked"`
}

type Terms struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
