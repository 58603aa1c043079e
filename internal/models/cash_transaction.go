package models

import "time"

// Cash transaction types
const (
	TxnTypeIncome  = "income"
	TxnTypeExpense = "expense"
)

// CashTransaction is one row in the shop's financial ledger. Repair orders
// reference their payment transaction by ID only; the ledger owns the row.
type CashTransaction struct {
	ID                int       `json:"id"`
	Type              string    `json:"type"`
	Category          string    `json:"category"` // "repair_payment", "repair_deposit", "manual", ...
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"payment_method"`
	Description       string    `json:"description"`
	ReferenceOrderID  string    `json:"reference_order_id,omitempty"`
	RecordedByUserID  int       `json:"recorded_by_user_id"`
	RecordedByName    string    `json:"recorded_by_name,omitempty"` // joined from users table
	TransactionDate   time.Time `json:"transaction_date"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateCashTransactionRequest represents a manual ledger posting
type CreateCashTransactionRequest struct {
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Description   string  `json:"description"`
}
