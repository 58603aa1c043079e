package repositories

import (
	"context"
	"time"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

func (r *OnlineTransactionRepository) Create(ctx context.Context, t *models.OnlineTransaction) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO online_transactions(gateway_order_id, repair_order_id, customer_name,
             customer_phone, amount, status)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at`,
		t.GatewayOrderID, t.RepairOrderID, t.CustomerName, t.CustomerPhone, t.Amount, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *OnlineTransactionRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.OnlineTransaction, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, gateway_order_id, COALESCE(gateway_payment_id, ''), COALESCE(gateway_signature, ''),
                repair_order_id, COALESCE(customer_name, ''), COALESCE(customer_phone, ''),
                amount, status, COALESCE(failure_reason, ''), cash_transaction_id, created_at, completed_at
         FROM online_transactions WHERE gateway_order_id=$1`, gatewayOrderID)

	var t models.OnlineTransaction
	err := row.Scan(&t.ID, &t.GatewayOrderID, &t.GatewayPaymentID, &t.GatewaySignature,
		&t.RepairOrderID, &t.CustomerName, &t.CustomerPhone,
		&t.Amount, &t.Status, &t.FailureReason, &t.CashTransactionID, &t.CreatedAt, &t.CompletedAt)
	return &t, err
}

// MarkSuccess records the capture and links the ledger row.
func (r *OnlineTransactionRepository) MarkSuccess(ctx context.Context, id int, paymentID, signature string, cashTxnID int) error {
	now := time.Now()
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions
         SET gateway_payment_id=$1, gateway_signature=$2, status=$3, cash_transaction_id=$4, completed_at=$5
         WHERE id=$6`,
		paymentID, signature, models.OnlineTxStatusSuccess, cashTxnID, now, id)
	return err
}

func (r *OnlineTransactionRepository) MarkFailed(ctx context.Context, id int, reason string) error {
	now := time.Now()
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions SET status=$1, failure_reason=$2, completed_at=$3 WHERE id=$4`,
		models.OnlineTxStatusFailed, reason, now, id)
	return err
}

func (r *OnlineTransactionRepository) ListByOrder(ctx context.Context, repairOrderID string) ([]*models.OnlineTransaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, gateway_order_id, COALESCE(gateway_payment_id, ''), COALESCE(gateway_signature, ''),
                repair_order_id, COALESCE(customer_name, ''), COALESCE(customer_phone, ''),
                amount, status, COALESCE(failure_reason, ''), cash_transaction_id, created_at, completed_at
         FROM online_transactions WHERE repair_order_id=$1 ORDER BY created_at DESC`, repairOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.OnlineTransaction
	for rows.Next() {
		var t models.OnlineTransaction
		err := rows.Scan(&t.ID, &t.GatewayOrderID, &t.GatewayPaymentID, &t.GatewaySignature,
			&t.RepairOrderID, &t.CustomerName, &t.CustomerPhone,
			&t.Amount, &t.Status, &t.FailureReason, &t.CashTransactionID, &t.CreatedAt, &t.CompletedAt)
		if err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, nil
}
