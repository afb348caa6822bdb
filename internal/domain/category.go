package domain

import "time"

// Category is a lookup row for classifying income and expense entries.
type Category struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Type      TransactionType `db:"type" json:"type"`
	Color     string          `db:"color" json:"color"`
	Icon      string          `db:"icon" json:"icon"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
