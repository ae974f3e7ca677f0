package screen

import (
	"sort"

	"github.com/quantumstock/backend/internal/calendar"
	"github.com/quantumstock/backend/internal/contracts"
)

// DefaultLagOffset is the lag offset d1 applied when the caller does not
// override it.
const DefaultLagOffset = 0

// Evaluator applies the four-clause screening rule per instrument over
// its ordered bar history. Pure: no I/O, deterministic for a fixed
// calendar and lag offset.
type Evaluator struct {
	cal contracts.Calendar
	lag int
}

// NewEvaluator creates an evaluator with lag offset d1 = lagOffset.
func NewEvaluator(cal contracts.Calendar, lagOffset int) *Evaluator {
	return &Evaluator{cal: cal, lag: lagOffset}
}

// Evaluate returns the subset of bars that pass all four clauses, each
// tagged with runID and the derived buy/gold dates. Each instrument's
// history is evaluated in isolation; bars of other instruments never
// influence the outcome.
func (e *Evaluator) Evaluate(bars []contracts.Bar, runID string) []contracts.Selection {
	groups := make(map[string][]contracts.Bar)
	for _, b := range bars {
		groups[b.Instrument] = append(groups[b.Instrument], b)
	}

	instruments := make([]string, 0, len(groups))
	for inst := range groups {
		instruments = append(instruments, inst)
	}
	sort.Strings(instruments)

	var hits []contracts.Selection
	for _, inst := range instruments {
		series := groups[inst]
		sort.Slice(series, func(i, j int) bool {
			return series[i].TradeDate.Before(series[j].TradeDate)
		})

		for i := range series {
			if !e.isHit(series, i) {
				continue
			}

			b := series[i]
			buyDate := calendar.NextTradingDay(e.cal, b.TradeDate.AddDate(0, 0, -(e.lag-1)))
			goldDate := calendar.PrevTradingDay(e.cal, calendar.MinusNTradingDays(e.cal, buyDate, 4))

			hits = append(hits, contracts.Selection{
				RunID:    runID,
				Bar:      b,
				BuyDate:  buyDate,
				GoldDate: goldDate,
			})
		}
	}
	return hits
}

// isHit evaluates the four clauses for row i of one instrument's ordered
// series. Any lag reaching before the start of the series, and any zero
// denominator, makes the clause false; rule evaluation never errors.
func (e *Evaluator) isHit(series []contracts.Bar, i int) bool {
	close0, ok := lagged(series, i, e.lag+3, func(b *contracts.Bar) float64 { return b.Close })
	if !ok {
		return false
	}
	close1, ok := lagged(series, i, e.lag+4, func(b *contracts.Bar) float64 { return b.Close })
	if !ok || close1 == 0 {
		return false
	}
	if close0/close1 <= 1.08 {
		return false
	}

	var vol [5]float64
	for k := 0; k < 5; k++ {
		v, ok := lagged(series, i, e.lag+k, func(b *contracts.Bar) float64 { return b.Volume })
		if !ok {
			return false
		}
		vol[k] = v
	}
	if !(vol[0]*1.1 < vol[3] && vol[1]*1.1 < vol[2] && vol[2]*1.1 < vol[3]) {
		return false
	}
	if vol[3] < 1.5*vol[4] {
		return false
	}

	var low [4]float64
	for k := 0; k < 4; k++ {
		v, ok := lagged(series, i, e.lag+k, func(b *contracts.Bar) float64 { return b.Low })
		if !ok {
			return false
		}
		low[k] = v
	}
	avg := (low[3] + close0) / 2
	return low[0] > avg && low[1] > avg && low[2] > avg
}

// lagged returns the value n rows earlier in the same series, false when
// the series does not reach back that far.
func lagged(series []contracts.Bar, i, n int, field func(*contracts.Bar) float64) (float64, bool) {
	j := i - n
	if j < 0 || j >= len(series) {
		return 0, false
	}
	return field(&series[j]), true
}
