package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepairOrderRepository struct {
	DB *pgxpool.Pool
}

func NewRepairOrderRepository(db *pgxpool.Pool) *RepairOrderRepository {
	return &RepairOrderRepository{DB: db}
}

const repairOrderColumns = `id, creation_date, customer_name, customer_phone, COALESCE(device_name, ''),
    issue_description, COALESCE(technician_name, ''), status, materials_used, outsourcing_items,
    labor_cost, deposit_amount, total, payment_status, COALESCE(payment_method, ''),
    partial_payment_amount, payment_date, cash_transaction_id, due_date,
    quote_approved, quote_approved_at, COALESCE(notes, ''), materials_deducted,
    COALESCE(created_by_user_id, 0), created_at, updated_at`

func scanRepairOrder(row pgx.Row) (*models.RepairOrder, error) {
	var o models.RepairOrder
	var materialsJSON, outsourcingJSON []byte
	err := row.Scan(&o.ID, &o.CreationDate, &o.CustomerName, &o.CustomerPhone, &o.DeviceName,
		&o.IssueDescription, &o.TechnicianName, &o.Status, &materialsJSON, &outsourcingJSON,
		&o.LaborCost, &o.DepositAmount, &o.Total, &o.PaymentStatus, &o.PaymentMethod,
		&o.PartialPaymentAmount, &o.PaymentDate, &o.CashTransactionID, &o.DueDate,
		&o.QuoteApproved, &o.QuoteApprovedAt, &o.Notes, &o.MaterialsDeducted,
		&o.CreatedByUserID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(materialsJSON, &o.MaterialsUsed); err != nil {
		return nil, fmt.Errorf("decode materials_used for %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(outsourcingJSON, &o.OutsourcingItems); err != nil {
		return nil, fmt.Errorf("decode outsourcing_items for %s: %w", o.ID, err)
	}
	return &o, nil
}

func (r *RepairOrderRepository) Create(ctx context.Context, o *models.RepairOrder) error {
	materialsJSON, err := json.Marshal(o.MaterialsUsed)
	if err != nil {
		return err
	}
	outsourcingJSON, err := json.Marshal(o.OutsourcingItems)
	if err != nil {
		return err
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO repair_orders(id, creation_date, customer_name, customer_phone, device_name,
             issue_description, technician_name, status, materials_used, outsourcing_items,
             labor_cost, deposit_amount, total, payment_status, payment_method,
             partial_payment_amount, payment_date, due_date, quote_approved, quote_approved_at,
             notes, materials_deducted, created_by_user_id)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
         RETURNING created_at, updated_at`,
		o.ID, o.CreationDate, o.CustomerName, o.CustomerPhone, o.DeviceName,
		o.IssueDescription, o.TechnicianName, o.Status, materialsJSON, outsourcingJSON,
		o.LaborCost, o.DepositAmount, o.Total, o.PaymentStatus, o.PaymentMethod,
		o.PartialPaymentAmount, o.PaymentDate, o.DueDate, o.QuoteApproved, o.QuoteApprovedAt,
		o.Notes, o.MaterialsDeducted, o.CreatedByUserID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *RepairOrderRepository) Get(ctx context.Context, id string) (*models.RepairOrder, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+repairOrderColumns+` FROM repair_orders WHERE id=$1`, id)
	return scanRepairOrder(row)
}

func (r *RepairOrderRepository) List(ctx context.Context) ([]*models.RepairOrder, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+repairOrderColumns+` FROM repair_orders ORDER BY creation_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *RepairOrderRepository) ListByStatus(ctx context.Context, status string) ([]*models.RepairOrder, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+repairOrderColumns+` FROM repair_orders WHERE status=$1 ORDER BY creation_date DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ListByCustomerPhone returns a customer's order history, newest first.
func (r *RepairOrderRepository) ListByCustomerPhone(ctx context.Context, phone string) ([]*models.RepairOrder, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+repairOrderColumns+` FROM repair_orders WHERE customer_phone=$1 ORDER BY creation_date DESC`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ListBetween returns orders created in [from, to), newest first. Used by reports.
func (r *RepairOrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.RepairOrder, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+repairOrderColumns+` FROM repair_orders
         WHERE creation_date >= $1 AND creation_date < $2
         ORDER BY creation_date DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.RepairOrder
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *RepairOrderRepository) Update(ctx context.Context, o *models.RepairOrder) error {
	materialsJSON, err := json.Marshal(o.MaterialsUsed)
	if err != nil {
		return err
	}
	outsourcingJSON, err := json.Marshal(o.OutsourcingItems)
	if err != nil {
		return err
	}
	tag, err := r.DB.Exec(ctx,
		`UPDATE repair_orders SET
             customer_name=$1, customer_phone=$2, device_name=$3, issue_description=$4,
             technician_name=$5, status=$6, materials_used=$7, outsourcing_items=$8,
             labor_cost=$9, deposit_amount=$10, total=$11, payment_status=$12,
             payment_method=$13, partial_payment_amount=$14, payment_date=$15,
             due_date=$16, quote_approved=$17, quote_approved_at=$18, notes=$19,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$20`,
		o.CustomerName, o.CustomerPhone, o.DeviceName, o.IssueDescription,
		o.TechnicianName, o.Status, materialsJSON, outsourcingJSON,
		o.LaborCost, o.DepositAmount, o.Total, o.PaymentStatus,
		o.PaymentMethod, o.PartialPaymentAmount, o.PaymentDate,
		o.DueDate, o.QuoteApproved, o.QuoteApprovedAt, o.Notes, o.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RepairOrderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM repair_orders WHERE id=$1`, id)
	return err
}

// SaveFinal commits an order together with its side effects in one
// transaction: upsert the customer record, deduct stock for each catalog
// material line, post the payment or deposit to the cash ledger, and mark
// the order as deducted. A stock row that would go negative aborts the
// whole transaction with ErrInsufficientStock.
func (r *RepairOrderRepository) SaveFinal(ctx context.Context, o *models.RepairOrder, deductStock bool, cashTxn *models.CashTransaction, isNew bool) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Upsert customer so repeat customers accumulate history. Matched by
	// exact phone first, then by case-insensitive name, so a customer first
	// recorded without a phone is found and completed instead of duplicated.
	if o.CustomerName != "" || o.CustomerPhone != "" {
		var customerID int
		err = tx.QueryRow(ctx,
			`SELECT id FROM customers
             WHERE (phone <> '' AND phone = $2) OR LOWER(name) = LOWER($1)
             ORDER BY (phone = $2) DESC
             LIMIT 1`, o.CustomerName, o.CustomerPhone).Scan(&customerID)
		if errors.Is(err, pgx.ErrNoRows) {
			_, err = tx.Exec(ctx,
				`INSERT INTO customers(name, phone) VALUES($1, $2)`, o.CustomerName, o.CustomerPhone)
			if err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			_, err = tx.Exec(ctx,
				`UPDATE customers SET name=$1, phone=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
				o.CustomerName, o.CustomerPhone, customerID)
			if err != nil {
				return err
			}
		}
	}

	if deductStock {
		for _, mu := range o.MaterialsUsed {
			if mu.IsNew || mu.MaterialID == "" {
				continue
			}
			var stock float64
			err = tx.QueryRow(ctx,
				`UPDATE materials SET stock = stock - $1, updated_at=CURRENT_TIMESTAMP
                 WHERE id=$2 AND stock - $1 >= 0
                 RETURNING stock`, mu.Quantity, mu.MaterialID).Scan(&stock)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("material %s (%s): %w", mu.MaterialName, mu.MaterialID, ErrInsufficientStock)
			}
			if err != nil {
				return err
			}
		}
		o.MaterialsDeducted = true
	}

	if cashTxn != nil {
		err = tx.QueryRow(ctx,
			`INSERT INTO cash_transactions(type, category, amount, payment_method, description,
                 reference_order_id, recorded_by_user_id, transaction_date)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8)
             RETURNING id, created_at`,
			cashTxn.Type, cashTxn.Category, cashTxn.Amount, cashTxn.PaymentMethod,
			cashTxn.Description, o.ID, cashTxn.RecordedByUserID, cashTxn.TransactionDate,
		).Scan(&cashTxn.ID, &cashTxn.CreatedAt)
		if err != nil {
			return err
		}
		o.CashTransactionID = &cashTxn.ID
	}

	materialsJSON, err := json.Marshal(o.MaterialsUsed)
	if err != nil {
		return err
	}
	outsourcingJSON, err := json.Marshal(o.OutsourcingItems)
	if err != nil {
		return err
	}

	if isNew {
		err = tx.QueryRow(ctx,
			`INSERT INTO repair_orders(id, creation_date, customer_name, customer_phone, device_name,
                 issue_description, technician_name, status, materials_used, outsourcing_items,
                 labor_cost, deposit_amount, total, payment_status, payment_method,
                 partial_payment_amount, payment_date, cash_transaction_id, due_date,
                 quote_approved, quote_approved_at, notes, materials_deducted, created_by_user_id)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
             RETURNING created_at, updated_at`,
			o.ID, o.CreationDate, o.CustomerName, o.CustomerPhone, o.DeviceName,
			o.IssueDescription, o.TechnicianName, o.Status, materialsJSON, outsourcingJSON,
			o.LaborCost, o.DepositAmount, o.Total, o.PaymentStatus, o.PaymentMethod,
			o.PartialPaymentAmount, o.PaymentDate, o.CashTransactionID, o.DueDate,
			o.QuoteApproved, o.QuoteApprovedAt, o.Notes, o.MaterialsDeducted, o.CreatedByUserID,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE repair_orders SET
                 customer_name=$1, customer_phone=$2, device_name=$3, issue_description=$4,
                 technician_name=$5, status=$6, materials_used=$7, outsourcing_items=$8,
                 labor_cost=$9, deposit_amount=$10, total=$11, payment_status=$12,
                 payment_method=$13, partial_payment_amount=$14, payment_date=$15,
                 cash_transaction_id=$16, due_date=$17, quote_approved=$18, quote_approved_at=$19,
                 notes=$20, materials_deducted=$21, updated_at=CURRENT_TIMESTAMP
             WHERE id=$22`,
			o.CustomerName, o.CustomerPhone, o.DeviceName, o.IssueDescription,
			o.TechnicianName, o.Status, materialsJSON, outsourcingJSON,
			o.LaborCost, o.DepositAmount, o.Total, o.PaymentStatus,
			o.PaymentMethod, o.PartialPaymentAmount, o.PaymentDate,
			o.CashTransactionID, o.DueDate, o.QuoteApproved, o.QuoteApprovedAt,
			o.Notes, o.MaterialsDeducted, o.ID)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
