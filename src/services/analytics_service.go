// backend/src/services/analytics_service.go
package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/model"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/processors"
	"github.com/username/sellerledger/backend/src/utils"
)

const (
	ckAnalyticsSummary     = "agg_summary_user_%d_acc_%v_start_%s_end_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type analyticsServiceImpl struct {
	db          *sql.DB
	reportCache *cache.Cache
}

func NewAnalyticsService(db *sql.DB, reportCache *cache.Cache) AnalyticsService {
	return &analyticsServiceImpl{
		db:          db,
		reportCache: reportCache,
	}
}

// Summary re-derives the consolidation view over the filtered window and
// folds in inventory valuation and payment-ledger totals. The consolidation
// itself is the same pure function the ingestion path uses.
func (s *analyticsServiceImpl) Summary(userID int64, filter TransactionFilter) (*AnalyticsSummary, error) {
	cacheKey := summaryCacheKey(userID, filter)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*AnalyticsSummary), nil
	}

	transactions, err := s.ListTransactions(userID, filter)
	if err != nil {
		return nil, err
	}
	consolidated := processors.Consolidate(transactions)

	inventoryValue, err := model.InventoryValuation(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("computing inventory valuation: %w", err)
	}
	pending, paid, err := model.PaymentTotals(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("loading payment totals: %w", err)
	}

	summary := &AnalyticsSummary{
		GrossRevenue:            utils.RoundFloat(consolidated.GrossRevenue, 2),
		TotalFees:               utils.RoundFloat(consolidated.TotalFees, 2),
		TotalSourcingCost:       utils.RoundFloat(consolidated.TotalSourcingCost, 2),
		TotalShippingCost:       utils.RoundFloat(consolidated.TotalShippingCost, 2),
		NetProfit:               utils.RoundFloat(consolidated.NetProfit, 2),
		StandaloneInsertionFees: utils.RoundFloat(consolidated.StandaloneInsertionFees, 2),
		StandaloneOtherFees:     utils.RoundFloat(consolidated.StandaloneOtherFees, 2),
		OrderCount:              len(consolidated.Orders),
		InventoryValue:          utils.RoundFloat(inventoryValue, 2),
		PaymentsPending:         utils.RoundFloat(pending, 2),
		PaymentsPaid:            utils.RoundFloat(paid, 2),
	}

	s.reportCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

// ConsolidatedOrders returns the per-order derived view for the orders list.
func (s *analyticsServiceImpl) ConsolidatedOrders(userID int64, filter TransactionFilter) ([]models.ConsolidatedOrder, error) {
	transactions, err := s.ListTransactions(userID, filter)
	if err != nil {
		return nil, err
	}
	result := processors.Consolidate(transactions)
	if result.Orders == nil {
		result.Orders = []models.ConsolidatedOrder{}
	}
	return result.Orders, nil
}

func (s *analyticsServiceImpl) ListTransactions(userID int64, filter TransactionFilter) ([]models.CanonicalTransaction, error) {
	query := `SELECT id, user_id, account_id, product_id, file_hash, order_number, sku, item_name,
		quantity, transaction_type, gross_amount, fees, net_amount, sourcing_cost, shipping_cost,
		gross_profit, currency, order_date, description
		FROM order_transactions WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.AccountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *filter.AccountID)
	}
	if filter.DateStart != nil {
		query += ` AND order_date >= ?`
		args = append(args, *filter.DateStart)
	}
	if filter.DateEnd != nil {
		query += ` AND order_date <= ?`
		args = append(args, utils.EndOfDay(*filter.DateEnd))
	}
	query += ` ORDER BY order_date DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.CanonicalTransaction
	for rows.Next() {
		var tx models.CanonicalTransaction
		var productID sql.NullInt64
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.AccountID, &productID, &tx.FileHash, &tx.OrderNumber, &tx.SKU, &tx.ItemName,
			&tx.Quantity, &tx.TransactionType, &tx.GrossAmount, &tx.Fees, &tx.NetAmount, &tx.SourcingCost, &tx.ShippingCost,
			&tx.GrossProfit, &tx.Currency, &tx.OrderDate, &tx.Description,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if productID.Valid {
			tx.ProductID = &productID.Int64
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// InvalidateUserCache drops every cached summary belonging to the user.
// Called after ingestion, corrections and deletions.
func (s *analyticsServiceImpl) InvalidateUserCache(userID int64) {
	prefix := fmt.Sprintf("agg_summary_user_%d_", userID)
	for key := range s.reportCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Analytics cache invalidated", "userID", userID)
}

func summaryCacheKey(userID int64, filter TransactionFilter) string {
	acc := "all"
	if filter.AccountID != nil {
		acc = fmt.Sprintf("%d", *filter.AccountID)
	}
	start, end := "", ""
	if filter.DateStart != nil {
		start = filter.DateStart.Format("2006-01-02")
	}
	if filter.DateEnd != nil {
		end = filter.DateEnd.Format("2006-01-02")
	}
	return fmt.Sprintf(ckAnalyticsSummary, userID, acc, start, end)
}
