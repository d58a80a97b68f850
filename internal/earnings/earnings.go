// Package earnings derives the display totals screens show from the raw
// commission fields the backend reports.
package earnings

import (
	"cqwealth-client/internal/model"

	"github.com/shopspring/decimal"
)

// DisplayTotal prefers the sum of the two live commission fields (pending +
// confirmed) and falls back to the legacy wallet aggregate only when that sum
// is exactly zero.
func DisplayTotal(s model.EarningsSnapshot) decimal.Decimal {
	preferred := s.PendingCommissions.Add(s.TotalCommissions)
	if !preferred.IsZero() {
		return preferred
	}
	return s.WalletCommissionTotal
}

// Breakdown is what the earnings screen renders.
type Breakdown struct {
	Pending   decimal.Decimal
	Confirmed decimal.Decimal
	Displayed decimal.Decimal
	Lifetime  decimal.Decimal
}

func NewBreakdown(s model.EarningsSnapshot) Breakdown {
	return Breakdown{
		Pending:   s.PendingCommissions,
		Confirmed: s.TotalCommissions,
		Displayed: DisplayTotal(s),
		Lifetime:  s.LifetimeEarnings,
	}
}
