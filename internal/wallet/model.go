package wallet

// CreateWalletRequest seeds a new wallet. Balance may only be set here;
// afterwards it moves exclusively through journal apply/reverse.
type CreateWalletRequest struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Balance       string  `json:"balance"`
	AccountNumber *string `json:"account_number"`
	Color         string  `json:"color"`
	Icon          string  `json:"icon"`
}

// UpdateWalletRequest carries the editable fields. Balance is deliberately
// absent: direct balance writes are not part of the contract.
type UpdateWalletRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	AccountNumber *string `json:"account_number"`
	Color         *string `json:"color"`
	Icon          *string `json:"icon"`
	IsActive      *bool   `json:"is_active"`
}

type BalanceResponse struct {
	WalletID string `json:"wallet_id"`
	Balance  string `json:"balance"`
}
