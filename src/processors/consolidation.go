// backend/src/processors/consolidation.go
package processors

import (
	"math"
	"strings"

	"github.com/username/sellerledger/backend/src/models"
)

// claimFeeGBP is the fixed processing fee applied to a claimed order on the
// UK marketplace. Claims in any other currency cost nothing.
const claimFeeGBP = 0.36

// orderBucket is the working state for one order number during a
// consolidation pass.
type orderBucket struct {
	order models.ConsolidatedOrder
	// netEffectFees accumulates order fees plus refund magnitudes; refunds
	// are modeled purely as a cost, not as negative revenue.
	netEffectFees float64
	// reportShippingCost accumulates shipping/postage label magnitudes on
	// top of the seeded baseline shipping cost.
	reportShippingCost float64
	seededShipping     float64
}

// Consolidate groups transactions by order number and computes the per-order
// and aggregate financial view. It is a pure function over any transaction
// subset sharing order numbers: the ingestion path and the analytics path
// both call it, so the two can never drift.
func Consolidate(transactions []models.CanonicalTransaction) models.ConsolidationResult {
	// Pass 1: claimed orders. Any row tagged Claim poisons its order number.
	claimed := make(map[string]bool)
	for _, tx := range transactions {
		if tx.TransactionType == models.TxTypeClaim && tx.OrderNumber != "" {
			claimed[tx.OrderNumber] = true
		}
	}

	var result models.ConsolidationResult
	buckets := make(map[string]*orderBucket)
	var orderKeys []string

	// Pass 2: single fold over the transaction sequence.
	for _, tx := range transactions {
		switch {
		case tx.TransactionType == models.TxTypeInsertionFee || tx.TransactionType == models.TxTypeListingFee:
			result.StandaloneInsertionFees += feeMagnitude(tx)
			continue
		case tx.TransactionType == models.TxTypeOtherFee ||
			strings.Contains(strings.ToLower(tx.Description), "transaction fee"):
			result.StandaloneOtherFees += feeMagnitude(tx)
			continue
		case tx.OrderNumber == "":
			continue
		}

		bucket, ok := buckets[tx.OrderNumber]
		if !ok {
			bucket = &orderBucket{
				order: models.ConsolidatedOrder{
					OrderNumber:  tx.OrderNumber,
					Currency:     tx.Currency,
					SourcingCost: tx.SourcingCost,
					Claimed:      claimed[tx.OrderNumber],
				},
				seededShipping: tx.ShippingCost,
			}
			buckets[tx.OrderNumber] = bucket
			orderKeys = append(orderKeys, tx.OrderNumber)
		}

		// Claimed orders stay at their seeded baseline; the override in the
		// finalize pass zeroes them regardless.
		if bucket.order.Claimed {
			continue
		}

		switch tx.TransactionType {
		case models.TxTypeOrder, models.TxTypeSale:
			bucket.order.GrossAmount += tx.GrossAmount
			bucket.netEffectFees += math.Abs(tx.Fees)
		case models.TxTypeRefund:
			bucket.netEffectFees += math.Abs(tx.GrossAmount)
		case models.TxTypeShippingLabel, models.TxTypePostageLabel:
			bucket.reportShippingCost += math.Abs(tx.GrossAmount)
		}
	}

	// Pass 3: finalize each bucket in first-seen order.
	for _, key := range orderKeys {
		bucket := buckets[key]
		order := bucket.order
		if order.Claimed {
			// A claim is a fixed-cost wash, not a revenue event.
			if order.Currency == "GBP" {
				order.Fees = claimFeeGBP
			} else {
				order.Fees = 0
			}
			order.GrossAmount = 0
			order.ShippingCost = 0
			order.SourcingCost = 0
		} else {
			order.Fees = bucket.netEffectFees
			order.ShippingCost = bucket.seededShipping + bucket.reportShippingCost
		}
		order.GrossProfit = order.GrossAmount - order.Fees - order.SourcingCost - order.ShippingCost

		result.Orders = append(result.Orders, order)
		result.GrossRevenue += order.GrossAmount
		result.TotalFees += order.Fees
		result.TotalSourcingCost += order.SourcingCost
		result.TotalShippingCost += order.ShippingCost
	}

	result.TotalFees += result.StandaloneInsertionFees + result.StandaloneOtherFees
	result.NetProfit = result.GrossRevenue - result.TotalFees - result.TotalSourcingCost - result.TotalShippingCost
	return result
}

// feeMagnitude is the amount a standalone fee row contributes: the stored fee
// when present, otherwise the gross amount (insertion fees in marketplace
// reports are often reported as a negative amount with no fee columns).
func feeMagnitude(tx models.CanonicalTransaction) float64 {
	if tx.Fees != 0 {
		return math.Abs(tx.Fees)
	}
	return math.Abs(tx.GrossAmount)
}
