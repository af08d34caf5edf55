// backend/src/models/consolidation.go
package models

// ConsolidatedOrder is the derived view of all transactions sharing an order
// number. It is computed fresh on every request and never persisted.
type ConsolidatedOrder struct {
	OrderNumber  string  `json:"order_number"`
	Currency     string  `json:"currency"`
	GrossAmount  float64 `json:"gross_amount"`
	Fees         float64 `json:"fees"`
	ShippingCost float64 `json:"shipping_cost"`
	SourcingCost float64 `json:"sourcing_cost"`
	GrossProfit  float64 `json:"gross_profit"`
	Claimed      bool    `json:"claimed"`
}

// ConsolidationResult is the output of a single consolidation pass over a
// transaction subset: the per-order view plus the standalone fee accumulators
// and the aggregate figures a dashboard shows.
type ConsolidationResult struct {
	Orders                  []ConsolidatedOrder `json:"orders"`
	StandaloneInsertionFees float64             `json:"standalone_insertion_fees"`
	StandaloneOtherFees     float64             `json:"standalone_other_fees"`

	GrossRevenue      float64 `json:"gross_revenue"`
	TotalFees         float64 `json:"total_fees"`
	TotalSourcingCost float64 `json:"total_sourcing_cost"`
	TotalShippingCost float64 `json:"total_shipping_cost"`
	NetProfit         float64 `json:"net_profit"`
}
