package models

import "time"

// OnlineTransactionStatus represents the status of an online payment
type OnlineTransactionStatus string

const (
	OnlineTxStatusPending  OnlineTransactionStatus = "pending"
	OnlineTxStatusSuccess  OnlineTransactionStatus = "success"
	OnlineTxStatusFailed   OnlineTransactionStatus = "failed"
	OnlineTxStatusRefunded OnlineTransactionStatus = "refunded"
)

// OnlineTransaction represents a gateway payment against a repair order's
// outstanding balance.
type OnlineTransaction struct {
	ID                int    `json:"id"`
	GatewayOrderID    string `json:"gateway_order_id"`
	GatewayPaymentID  string `json:"gateway_payment_id,omitempty"`
	GatewaySignature  string `json:"-"` // Don't expose signature in JSON

	RepairOrderID string `json:"repair_order_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	Amount float64 `json:"amount"`

	Status        OnlineTransactionStatus `json:"status"`
	FailureReason string                  `json:"failure_reason,omitempty"`

	// Set once the capture has been posted to the ledger
	CashTransactionID *int `json:"cash_transaction_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateOnlinePaymentRequest initiates a gateway payment for an order balance
type CreateOnlinePaymentRequest struct {
	RepairOrderID string  `json:"repair_order_id"`
	Amount        float64 `json:"amount"`
}

// CreateOrderResponse is returned to the frontend for gateway checkout
type CreateOrderResponse struct {
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"` // in minor units
	Currency      string `json:"currency"`
	KeyID         string `json:"key_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// VerifyPaymentRequest is sent from the frontend after gateway callback
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}
