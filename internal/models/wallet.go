package models

import "time"

// Category classifies transactions. Type is the unique key.
type Category struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// Transaction is a single expense or income entry owned by a user.
type Transaction struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Type     string    `json:"type"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
}
