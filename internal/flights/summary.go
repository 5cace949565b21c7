package flights

import "github.com/shopspring/decimal"

// Summary describes how a route's price moved over its whole history.
type Summary struct {
	Count   int
	Oldest  Observation
	Newest  Observation
	Lowest  decimal.Decimal
	Highest decimal.Decimal
	// Change is newest - oldest, negative when the price went down.
	Change decimal.Decimal
	// ChangePercent is Change relative to the oldest price, it is zero when
	// the oldest price was zero.
	ChangePercent decimal.Decimal
}

// Summarize takes a newest-first history and returns false when it is
// empty.
func Summarize(history []Observation) (Summary, bool) {
	if len(history) == 0 {
		return Summary{}, false
	}

	newest := history[0]
	oldest := history[len(history)-1]
	summary := Summary{
		Count:   len(history),
		Oldest:  oldest,
		Newest:  newest,
		Lowest:  newest.Amount,
		Highest: newest.Amount,
		Change:  newest.Amount.Sub(oldest.Amount),
	}
	for _, o := range history[1:] {
		summary.Lowest = decimal.Min(summary.Lowest, o.Amount)
		summary.Highest = decimal.Max(summary.Highest, o.Amount)
	}
	if !oldest.Amount.IsZero() {
		summary.ChangePercent = summary.Change.
			Div(oldest.Amount).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return summary, true
}
