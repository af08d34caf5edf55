package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is one marketplace seller account owned by a user. Its default
// currency is the fallback for report rows carrying no currency column.
type Account struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Name            string    `json:"name"`
	Marketplace     string    `json:"marketplace"`
	DefaultCurrency string    `json:"default_currency"`
	CreatedAt       time.Time `json:"created_at"`
}

func CreateAccount(db *sql.DB, a *Account) error {
	if a.Marketplace == "" {
		a.Marketplace = "ebay"
	}
	if a.DefaultCurrency == "" {
		a.DefaultCurrency = "USD"
	}
	result, err := db.Exec(
		`INSERT INTO accounts (user_id, name, marketplace, default_currency) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, a.Marketplace, a.DefaultCurrency,
	)
	if err != nil {
		return err
	}
	a.ID, err = result.LastInsertId()
	return err
}

// GetAccountForUser loads an account only if it belongs to the given user.
// Ownership violations surface as not-found, never as someone else's data.
func GetAccountForUser(db *sql.DB, accountID, userID int64) (*Account, error) {
	var a Account
	err := db.QueryRow(
		`SELECT id, user_id, name, marketplace, default_currency, created_at
		 FROM accounts WHERE id = ? AND user_id = ?`, accountID, userID,
	).Scan(&a.ID, &a.UserID, &a.Name, &a.Marketplace, &a.DefaultCurrency, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func ListAccountsByUser(db *sql.DB, userID int64) ([]Account, error) {
	rows, err := db.Query(
		`SELECT id, user_id, name, marketplace, default_currency, created_at
		 FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Marketplace, &a.DefaultCurrency, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func DeleteAccount(db *sql.DB, accountID, userID int64) error {
	result, err := db.Exec(`DELETE FROM accounts WHERE id = ? AND user_id = ?`, accountID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
