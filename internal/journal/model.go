package journal

import "time"

// CreateTransactionRequest is the write payload for a new journal entry.
// Amount arrives as a decimal string so the client never loses precision
// to float formatting.
type CreateTransactionRequest struct {
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Notes       *string `json:"notes"`
	CategoryID  *string `json:"category_id"`
	WalletID    string  `json:"wallet_id"`
	ToWalletID  *string `json:"to_wallet_id"`
	Date        string  `json:"date"` // YYYY-MM-DD, defaults to today
	Time        string  `json:"time"` // HH:MM, defaults to now
	ReceiptURL  *string `json:"receipt_url"`
}

// UpdateTransactionRequest carries partial edits. A type change away from
// transfer drops the destination wallet; a change to transfer requires a
// destination either here or already on the row.
type UpdateTransactionRequest struct {
	Type        *string `json:"type"`
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	CategoryID  *string `json:"category_id"`
	WalletID    *string `json:"wallet_id"`
	ToWalletID  *string `json:"to_wallet_id"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	ReceiptURL  *string `json:"receipt_url"`
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	WalletID   string
	UserID     string
	Type       string
	CategoryID string
	DateFrom   time.Time
	DateTo     time.Time
	Limit      int
}
