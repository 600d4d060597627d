package finance

import (
	"fmt"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/shopspring/decimal"
)

// Tier is a debt priority class, highest urgency first
type Tier string

const (
	TierUrgent Tier = "urgent"
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Thresholds are the annual-rate cutoffs (in percent) between tiers.
// They are defaults, not law; callers may tune them per entity.
type Thresholds struct {
	HighRate   decimal.Decimal `json:"high_rate"`
	MediumRate decimal.Decimal `json:"medium_rate"`
}

// DefaultThresholds returns the standard cutoffs: above 20% is high
// priority, above 12% medium.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighRate:   decimal.NewFromInt(20),
		MediumRate: decimal.NewFromInt(12),
	}
}

// Advice is a priority classification with a human-readable message
type Advice struct {
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}

// ClassifyDebt assigns a priority tier to a debt. Rules apply in order,
// first match wins: any arrears is urgent regardless of rate, then the
// rate thresholds, then low.
func ClassifyDebt(d models.Debt, t Thresholds) Advice {
	switch {
	case d.MonthsInArrears > 0:
		return Advice{
			Tier: TierUrgent,
			Message: fmt.Sprintf("%s is %d month(s) in arrears. Contact the lender to negotiate before penalties compound.",
				d.Name, d.MonthsInArrears),
		}
	case d.AnnualRate.GreaterThan(t.HighRate):
		return Advice{
			Tier: TierHigh,
			Message: fmt.Sprintf("%s carries a %s%% annual rate. Extra payments here save the most interest.",
				d.Name, d.AnnualRate.String()),
		}
	case d.AnnualRate.GreaterThan(t.MediumRate):
		return Advice{
			Tier: TierMedium,
			Message: fmt.Sprintf("%s has a moderate %s%% annual rate. Keep up the scheduled payments.",
				d.Name, d.AnnualRate.String()),
		}
	default:
		return Advice{
			Tier:    TierLow,
			Message: fmt.Sprintf("%s is under control.", d.Name),
		}
	}
}
