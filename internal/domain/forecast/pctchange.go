package forecast

// Percentage-change bounds. The lower bound doubles as the default growth.
const (
	MinPctChange     = 0.05
	MaxPctChange     = 0.2
	DefaultPctChange = 0.05
)

// Rule names a percentage-change rule.
type Rule string

// Rules in the order the history policy tries them.
const (
	RuleFirstStepActual  Rule = "first_step_actual"
	RulePredictedHistory Rule = "predicted_history"
	RuleActualHistory    Rule = "actual_history"
	RuleDefault          Rule = "default"
	RuleFixed            Rule = "fixed"
)

// History is what a policy sees at one step.
type History struct {
	// Step is 1-based.
	Step      int
	LastPrice float64
	// Actual holds observed prices in insertion order.
	Actual []float64
	// Predicted holds the request's predicted prices followed by every price
	// produced so far in this forecast.
	Predicted []float64
}

// PctChangePolicy derives the unclamped growth signal for one step.
type PctChangePolicy interface {
	PctChange(h History) (float64, Rule)
}

// HistoryPolicy uses price history when it can.
type HistoryPolicy struct{}

// PctChange implements PctChangePolicy. The first rule that applies wins:
//  1. on the first step, the last observed year-over-year change
//  2. the change from the second-to-last predicted price to the last price
//  3. the change from the second-to-last observed price to the last price
//  4. DefaultPctChange
func (HistoryPolicy) PctChange(h History) (float64, Rule) {
	if h.Step == 1 {
		if prev, ok := secondToLast(h.Actual); ok && prev != 0 {
			return (h.Actual[len(h.Actual)-1] - prev) / prev, RuleFirstStepActual
		}
	}
	if prev, ok := secondToLast(h.Predicted); ok && prev != 0 {
		return (h.LastPrice - prev) / prev, RulePredictedHistory
	}
	if prev, ok := secondToLast(h.Actual); ok && prev != 0 {
		return (h.LastPrice - prev) / prev, RuleActualHistory
	}
	return DefaultPctChange, RuleDefault
}

// FixedPolicy ignores history and always returns Value.
type FixedPolicy struct {
	Value float64
}

// PctChange implements PctChangePolicy.
func (p FixedPolicy) PctChange(History) (float64, Rule) {
	return p.Value, RuleFixed
}

// ClampPctChange bounds v to [MinPctChange, MaxPctChange]. NaN maps to the
// lower bound.
func ClampPctChange(v float64) float64 {
	if v > MaxPctChange {
		return MaxPctChange
	}
	if !(v >= MinPctChange) {
		return MinPctChange
	}
	return v
}

func secondToLast(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	return xs[len(xs)-2], true
}
