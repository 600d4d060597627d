package finance

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned for non-positive principal or term, a
	// negative rate, or a negative extra payment.
	ErrInvalidInput = errors.New("invalid amortization input")

	// ErrNonConvergence is returned when the schedule loop hits its safety
	// bound before the balance reaches zero. The truncated schedule is
	// still returned so callers can show it alongside a warning.
	ErrNonConvergence = errors.New("amortization did not converge within safety bound")
)

// payoffTolerance ends the schedule once the balance drops at or below
// one tenth of a currency unit, absorbing rounding residue.
var payoffTolerance = decimal.RequireFromString("0.1")

// SimulationInput are the parameters of a payoff simulation. AnnualRate
// is a percentage (12 means 12% per year).
type SimulationInput struct {
	Principal    decimal.Decimal `json:"principal"`
	AnnualRate   decimal.Decimal `json:"annual_rate"`
	TermMonths   int             `json:"term_months"`
	ExtraPayment decimal.Decimal `json:"extra_payment"`
}

// ScheduleRow is one month of an amortization schedule
type ScheduleRow struct {
	Month     int             `json:"month"`
	Payment   decimal.Decimal `json:"payment"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// Simulation is a full payoff schedule with summary metrics. MonthsSaved
// is zero unless an extra payment actually shortened the schedule.
type Simulation struct {
	Schedule       []ScheduleRow   `json:"schedule"`
	BasePayment    decimal.Decimal `json:"base_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	MonthsToPayoff int             `json:"months_to_payoff"`
	MonthsSaved    int             `json:"months_saved"`
}

// Simulate computes a fixed-payment amortization schedule with an
// optional extra monthly payment.
//
// The base payment uses the standard formula
//
//	pmt = P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate; zero-rate loans degenerate to an even split.
// The float64 pow is only used to derive the payment; the schedule itself
// runs in decimal arithmetic. The final payment is capped so the loan is
// paid off exactly, never overshooting.
func Simulate(in SimulationInput) (Simulation, error) {
	if !in.Principal.IsPositive() || in.TermMonths <= 0 ||
		in.AnnualRate.IsNegative() || in.ExtraPayment.IsNegative() {
		return Simulation{}, ErrInvalidInput
	}

	monthlyRate := in.AnnualRate.InexactFloat64() / 100.0 / 12.0
	if math.IsNaN(monthlyRate) || math.IsInf(monthlyRate, 0) {
		return Simulation{}, ErrInvalidInput
	}

	var base decimal.Decimal
	if monthlyRate == 0 {
		base = in.Principal.Div(decimal.NewFromInt(int64(in.TermMonths))).Round(2)
	} else {
		factor := math.Pow(1+monthlyRate, float64(in.TermMonths))
		pmt := in.Principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
		// Extreme rate/term combinations overflow the pow factor and the
		// payment degenerates to NaN or Inf.
		if math.IsNaN(pmt) || math.IsInf(pmt, 0) {
			return Simulation{}, ErrInvalidInput
		}
		base = decimal.NewFromFloat(pmt).Round(2)
	}

	monthlyRateDec := decimal.NewFromFloat(monthlyRate)
	balance := in.Principal
	totalInterest := decimal.Zero
	schedule := make([]ScheduleRow, 0, in.TermMonths)

	// Safety bound against pathological inputs that never amortize.
	limit := 2 * in.TermMonths
	converged := false

	for month := 1; month <= limit; month++ {
		interest := balance.Mul(monthlyRateDec).Round(2)
		payment := base.Add(in.ExtraPayment)
		due := balance.Add(interest)
		if payment.GreaterThan(due) {
			payment = due
		}
		principalPart := payment.Sub(interest)
		balance = balance.Sub(principalPart)
		totalInterest = totalInterest.Add(interest)

		schedule = append(schedule, ScheduleRow{
			Month:     month,
			Payment:   payment,
			Interest:  interest,
			Principal: principalPart,
			Balance:   balance,
		})

		if balance.LessThanOrEqual(payoffTolerance) {
			converged = true
			break
		}
	}

	sim := Simulation{
		Schedule:       schedule,
		BasePayment:    base,
		TotalInterest:  totalInterest,
		TotalCost:      in.Principal.Add(totalInterest),
		MonthsToPayoff: len(schedule),
	}
	if in.ExtraPayment.IsPositive() && len(schedule) < in.TermMonths {
		sim.MonthsSaved = in.TermMonths - len(schedule)
	}

	if !converged {
		return sim, ErrNonConvergence
	}
	return sim, nil
}
