package pricing

import "github.com/munakata1001/mitumorisyo/internal/model"

// Result is a consistent pair of priced rows and their cost summary.
type Result struct {
	Rows            []model.LineItem  `json:"tableData"`
	CostCalculation model.CostSummary `json:"costCalculation"`
}

// RecalculateEverything reprices every row, aggregates them and composes the
// summary with the given manual costs. The pass is total and idempotent.
func (e Engine) RecalculateEverything(rows []model.LineItem, manual model.ManualCosts) Result {
	priced := e.PriceAll(rows)
	return Result{
		Rows:            priced,
		CostCalculation: Compose(Aggregate(priced), manual),
	}
}
