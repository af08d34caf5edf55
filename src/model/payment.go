package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrPaymentNotFound = errors.New("payment not found")

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Payment is one row of the payment ledger. The reconciliation core only
// reads the pending/paid totals for the dashboard.
type Payment struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	AccountID *int64     `json:"account_id,omitempty"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	Reference string     `json:"reference"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func CreatePayment(db *sql.DB, p *Payment) error {
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	result, err := db.Exec(
		`INSERT INTO payments (user_id, account_id, amount, currency, status, reference, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.AccountID, p.Amount, p.Currency, p.Status, p.Reference, p.DueDate,
	)
	if err != nil {
		return err
	}
	p.ID, err = result.LastInsertId()
	return err
}

func ListPaymentsByUser(db *sql.DB, userID int64) ([]Payment, error) {
	rows, err := db.Query(
		`SELECT id, user_id, account_id, amount, currency, status, reference, due_date, created_at
		 FROM payments WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.AccountID, &p.Amount, &p.Currency, &p.Status, &p.Reference, &p.DueDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func UpdatePaymentStatus(db *sql.DB, paymentID, userID int64, status string) error {
	result, err := db.Exec(
		`UPDATE payments SET status = ? WHERE id = ? AND user_id = ?`, status, paymentID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// PaymentTotals returns the pending and paid sums for the analytics summary.
func PaymentTotals(db *sql.DB, userID int64) (pending, paid float64, err error) {
	rows, err := db.Query(
		`SELECT status, SUM(amount) FROM payments WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var total sql.NullFloat64
		if err := rows.Scan(&status, &total); err != nil {
			return 0, 0, err
		}
		switch status {
		case PaymentStatusPending:
			pending = total.Float64
		case PaymentStatusPaid:
			paid = total.Float64
		}
	}
	return pending, paid, rows.Err()
}
