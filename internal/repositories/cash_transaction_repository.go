package repositories

import (
	"context"
	"time"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CashTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewCashTransactionRepository(db *pgxpool.Pool) *CashTransactionRepository {
	return &CashTransactionRepository{DB: db}
}

func (r *CashTransactionRepository) Create(ctx context.Context, t *models.CashTransaction) error {
	if t.TransactionDate.IsZero() {
		t.TransactionDate = time.Now()
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO cash_transactions(type, category, amount, payment_method, description,
             reference_order_id, recorded_by_user_id, transaction_date)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at`,
		t.Type, t.Category, t.Amount, t.PaymentMethod, t.Description,
		t.ReferenceOrderID, t.RecordedByUserID, t.TransactionDate,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *CashTransactionRepository) Get(ctx context.Context, id int) (*models.CashTransaction, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT t.id, t.type, t.category, t.amount, t.payment_method, COALESCE(t.description, ''),
                COALESCE(t.reference_order_id, ''), COALESCE(t.recorded_by_user_id, 0),
                COALESCE(u.name, ''), t.transaction_date, t.created_at
         FROM cash_transactions t
         LEFT JOIN users u ON u.id = t.recorded_by_user_id
         WHERE t.id=$1`, id)

	var t models.CashTransaction
	err := row.Scan(&t.ID, &t.Type, &t.Category, &t.Amount, &t.PaymentMethod, &t.Description,
		&t.ReferenceOrderID, &t.RecordedByUserID, &t.RecordedByName, &t.TransactionDate, &t.CreatedAt)
	return &t, err
}

// ListBetween returns ledger rows in [from, to), newest first.
func (r *CashTransactionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.CashTransaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT t.id, t.type, t.category, t.amount, t.payment_method, COALESCE(t.description, ''),
                COALESCE(t.reference_order_id, ''), COALESCE(t.recorded_by_user_id, 0),
                COALESCE(u.name, ''), t.transaction_date, t.created_at
         FROM cash_transactions t
         LEFT JOIN users u ON u.id = t.recorded_by_user_id
         WHERE t.transaction_date >= $1 AND t.transaction_date < $2
         ORDER BY t.transaction_date DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.CashTransaction
	for rows.Next() {
		var t models.CashTransaction
		err := rows.Scan(&t.ID, &t.Type, &t.Category, &t.Amount, &t.PaymentMethod, &t.Description,
			&t.ReferenceOrderID, &t.RecordedByUserID, &t.RecordedByName, &t.TransactionDate, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, nil
}

func (r *CashTransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]*models.CashTransaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT t.id, t.type, t.category, t.amount, t.payment_method, COALESCE(t.description, ''),
                COALESCE(t.reference_order_id, ''), COALESCE(t.recorded_by_user_id, 0),
                COALESCE(u.name, ''), t.transaction_date, t.created_at
         FROM cash_transactions t
         LEFT JOIN users u ON u.id = t.recorded_by_user_id
         WHERE t.reference_order_id=$1
         ORDER BY t.transaction_date`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.CashTransaction
	for rows.Next() {
		var t models.CashTransaction
		err := rows.Scan(&t.ID, &t.Type, &t.Category, &t.Amount, &t.PaymentMethod, &t.Description,
			&t.ReferenceOrderID, &t.RecordedByUserID, &t.RecordedByName, &t.TransactionDate, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, nil
}

func (r *CashTransactionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cash_transactions WHERE id=$1`, id)
	return err
}
