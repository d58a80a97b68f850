package session

import (
	"fmt"
	"sync"
	"time"

	"cqwealth-client/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Record is the persisted session: the signed-in member plus the bearer token
// and the activation (payment/access) flag.
type Record struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           string `gorm:"size:64;not null"`
	Name             string
	Email            string `gorm:"size:255"`
	Phone            string `gorm:"size:32"`
	ReferralCode     string `gorm:"size:32"`
	Token            string `gorm:"not null"`
	PaymentCompleted bool
	WalletBalance    decimal.Decimal `gorm:"type:decimal(20,2)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *Record) User() model.User {
	return model.User{
		ID:               r.UserID,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		ReferralCode:     r.ReferralCode,
		PaymentCompleted: r.PaymentCompleted,
		WalletBalance:    r.WalletBalance,
	}
}

// Store is the persistence contract the source app only implied: get, set,
// clear. Load returns (nil, nil) when no session is stored.
type Store interface {
	Load() (*Record, error)
	Save(record *Record) error
	Clear() error
}

// Manager owns the in-process session state. The source kept this on a global
// singleton; here it is injected so independent clients carry independent
// tokens.
type Manager struct {
	mu    sync.Mutex
	store Store
	rec   *Record
	log   *zap.Logger
}

func NewManager(store Store, log *zap.Logger) (*Manager, error) {
	rec, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Manager{store: store, rec: rec, log: log}, nil
}

// Token implements client.TokenSource. Empty when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return ""
	}
	return m.rec.Token
}

func (m *Manager) SignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec != nil
}

// Current returns a copy of the signed-in member, or nil.
func (m *Manager) Current() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return nil
	}
	u := m.rec.User()
	return &u
}

func (m *Manager) Activated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec != nil && m.rec.PaymentCompleted
}

// Begin starts a session from a login/registration response.
func (m *Manager) Begin(user model.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := &Record{
		UserID:           user.ID,
		Name:             user.DisplayName(),
		Email:            user.Email,
		Phone:            user.Phone,
		ReferralCode:     user.ReferralCode,
		Token:            token,
		PaymentCompleted: user.PaymentCompleted,
		WalletBalance:    user.WalletBalance,
	}
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.rec = rec
	m.log.Info("session started", zap.String("user_id", user.ID))
	return nil
}

// Refresh folds a freshly fetched profile into the session.
func (m *Manager) Refresh(user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return fmt.Errorf("no active session")
	}
	m.rec.Name = user.DisplayName()
	m.rec.Phone = user.Phone
	m.rec.ReferralCode = user.ReferralCode
	m.rec.PaymentCompleted = user.PaymentCompleted
	m.rec.WalletBalance = user.WalletBalance
	if err := m.store.Save(m.rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// MarkActivated flips the access flag after a verified activation payment.
func (m *Manager) MarkActivated() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return fmt.Errorf("no active session")
	}
	m.rec.PaymentCompleted = true
	if err := m.store.Save(m.rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.log.Info("membership activated", zap.String("user_id", m.rec.UserID))
	return nil
}

func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.rec = nil
	return nil
}

// ForceLogoutIfExpired drops the session when the bearer token's exp claim
// has passed. The signature is not checked, that is the backend's job; an
// unparseable token is left alone and will fail server-side with a 401.
func (m *Manager) ForceLogoutIfExpired() (bool, error) {
	m.mu.Lock()
	if m.rec == nil {
		m.mu.Unlock()
		return false, nil
	}
	token := m.rec.Token
	m.mu.Unlock()

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, nil
	}
	if exp.After(time.Now()) {
		return false, nil
	}

	m.log.Info("session token expired, forcing logout")
	if err := m.Logout(); err != nil {
		return false, err
	}
	return true, nil
}
