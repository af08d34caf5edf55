package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a catalog entry keyed by (user, SKU). unit_cost is the sourcing
// cost the reconciliation engine attaches to matched sale rows; quantity
// drives the dashboard's inventory valuation.
type Product struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	UnitCost  float64   `json:"unit_cost"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func CreateProduct(db *sql.DB, p *Product) error {
	result, err := db.Exec(
		`INSERT INTO products (user_id, sku, name, unit_cost, quantity) VALUES (?, ?, ?, ?, ?)`,
		p.UserID, p.SKU, p.Name, p.UnitCost, p.Quantity,
	)
	if err != nil {
		return err
	}
	p.ID, err = result.LastInsertId()
	return err
}

// GetProductBySKU resolves the exact-match (user, sku) lookup used for
// SKU-to-product linkage during ingestion. Absence is not an error for the
// ingestion path, so callers check ErrProductNotFound specifically.
func GetProductBySKU(db *sql.DB, userID int64, sku string) (*Product, error) {
	var p Product
	err := db.QueryRow(
		`SELECT id, user_id, sku, name, unit_cost, quantity, created_at
		 FROM products WHERE user_id = ? AND sku = ?`, userID, sku,
	).Scan(&p.ID, &p.UserID, &p.SKU, &p.Name, &p.UnitCost, &p.Quantity, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func ListProductsByUser(db *sql.DB, userID int64) ([]Product, error) {
	rows, err := db.Query(
		`SELECT id, user_id, sku, name, unit_cost, quantity, created_at
		 FROM products WHERE user_id = ? ORDER BY sku`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.SKU, &p.Name, &p.UnitCost, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func UpdateProduct(db *sql.DB, p *Product) error {
	result, err := db.Exec(
		`UPDATE products SET name = ?, unit_cost = ?, quantity = ? WHERE id = ? AND user_id = ?`,
		p.Name, p.UnitCost, p.Quantity, p.ID, p.UserID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func DeleteProduct(db *sql.DB, productID, userID int64) error {
	result, err := db.Exec(`DELETE FROM products WHERE id = ? AND user_id = ?`, productID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// InventoryValuation is the sum of unit_cost * quantity over the user's
// catalog, shown alongside the reconciliation aggregates on the dashboard.
func InventoryValuation(db *sql.DB, userID int64) (float64, error) {
	var total sql.NullFloat64
	err := db.QueryRow(
		`SELECT SUM(unit_cost * quantity) FROM products WHERE user_id = ?`, userID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}
