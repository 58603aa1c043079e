package models

import "time"

// Repair order lifecycle statuses. The shop runs the board in Vietnamese;
// the strings are stored verbatim so the UI and printed documents match.
const (
	StatusIntake          = "Tiếp nhận"
	StatusAwaitingQuote   = "Chờ báo giá"
	StatusAwaitingParts   = "Chờ vật liệu"
	StatusReadyForRepair  = "Sẵn sàng sửa"
	StatusRepairing       = "Đang sửa"
	StatusRepairDone      = "Đã sửa xong"
	StatusReturned        = "Trả máy"
	StatusCancelled       = "Đã hủy"
)

// OrderedStatuses is the business ordering of the board, intake to returned.
// Cancelled sits outside the sequence and is reachable from any non-terminal state.
var OrderedStatuses = []string{
	StatusIntake,
	StatusAwaitingQuote,
	StatusAwaitingParts,
	StatusReadyForRepair,
	StatusRepairing,
	StatusRepairDone,
	StatusReturned,
}

// Payment statuses and methods
const (
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"

	MethodCash     = "cash"
	MethodTransfer = "transfer"
	MethodCard     = "card"
)

// MaterialUsed is one material line on a repair order. Shortage is captured at
// add-time: max(0, quantity - available stock), where availability already
// accounts for other lines of the same material on the same order.
type MaterialUsed struct {
	MaterialID   string  `json:"material_id"`
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	InStock      float64 `json:"in_stock"`
	Shortage     float64 `json:"shortage,omitempty"`
	IsNew        bool    `json:"is_new,omitempty"` // material not in catalog, needs supplier order
}

// OutsourcingItem is a sub-contracted work line with its own cost/margin.
// Total is frozen at add-time (quantity * selling price).
type OutsourcingItem struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	Total        float64 `json:"total"`
}

type RepairOrder struct {
	ID                   string            `json:"id"`
	CreationDate         time.Time         `json:"creation_date"`
	CustomerName         string            `json:"customer_name"`
	CustomerPhone        string            `json:"customer_phone"`
	DeviceName           string            `json:"device_name"`
	IssueDescription     string            `json:"issue_description"`
	TechnicianName       string            `json:"technician_name"`
	Status               string            `json:"status"`
	MaterialsUsed        []MaterialUsed    `json:"materials_used"`
	OutsourcingItems     []OutsourcingItem `json:"outsourcing_items"`
	LaborCost            float64           `json:"labor_cost"`
	DepositAmount        float64           `json:"deposit_amount"`
	Total                float64           `json:"total"`
	PaymentStatus        string            `json:"payment_status"`
	PaymentMethod        string            `json:"payment_method,omitempty"`
	PartialPaymentAmount float64           `json:"partial_payment_amount,omitempty"`
	PaymentDate          *time.Time        `json:"payment_date,omitempty"`
	CashTransactionID    *int              `json:"cash_transaction_id,omitempty"`
	DueDate              *time.Time        `json:"due_date,omitempty"`
	QuoteApproved        bool              `json:"quote_approved"`
	QuoteApprovedAt      *time.Time        `json:"quote_approved_at,omitempty"`
	Notes                string            `json:"notes"`
	MaterialsDeducted    bool              `json:"materials_deducted"`
	CreatedByUserID      int               `json:"created_by_user_id"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Terminal reports whether the order has reached the locked end state:
// returned to the customer, fully paid, and stock already deducted.
// A terminal order must not be mutated through the editing endpoints.
func (o *RepairOrder) Terminal() bool {
	return o.Status == StatusReturned && o.PaymentStatus == PaymentPaid && o.MaterialsDeducted
}

// SaveRepairOrderRequest is the request body for creating or finalizing a repair order.
type SaveRepairOrderRequest struct {
	ID                   string            `json:"id,omitempty"`
	CustomerName         string            `json:"customer_name"`
	CustomerPhone        string            `json:"customer_phone"`
	DeviceName           string            `json:"device_name"`
	IssueDescription     string            `json:"issue_description"`
	TechnicianName       string            `json:"technician_name"`
	Status               string            `json:"status"`
	MaterialsUsed        []MaterialUsed    `json:"materials_used"`
	OutsourcingItems     []OutsourcingItem `json:"outsourcing_items"`
	LaborCost            float64           `json:"labor_cost"`
	DepositAmount        float64           `json:"deposit_amount"`
	PaymentStatus        string            `json:"payment_status"`
	PaymentMethod        string            `json:"payment_method"`
	PartialPaymentAmount float64           `json:"partial_payment_amount"`
	DueDate              *time.Time        `json:"due_date,omitempty"`
	QuoteApproved        bool              `json:"quote_approved"`
	Notes                string            `json:"notes"`

	// Two-phase confirmation flags. The first submit without the relevant flag
	// returns a confirmation payload; the client re-sends with the flag set.
	ConfirmDeduction bool `json:"confirm_deduction,omitempty"`
}

// AddMaterialRequest adds a material line to an order draft.
type AddMaterialRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Confirm  bool    `json:"confirm,omitempty"` // acknowledge shortage / new material
}

// AddOutsourcingRequest adds an outsourced work line to an order draft.
type AddOutsourcingRequest struct {
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	Confirm      bool    `json:"confirm,omitempty"` // acknowledge zero-margin line
}
