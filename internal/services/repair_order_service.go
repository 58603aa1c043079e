package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"repair-backend/internal/cache"
	"repair-backend/internal/metrics"
	"repair-backend/internal/models"
	"repair-backend/internal/repair"
	"repair-backend/internal/repositories"
	"repair-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

var (
	ErrOrderNotFound = errors.New("repair order not found")
	ErrSaveInFlight  = errors.New("order is already being saved")
)

type RepairOrderService struct {
	OrderRepo    *repositories.RepairOrderRepository
	MaterialRepo *repositories.MaterialRepository
	CustomerRepo *repositories.CustomerRepository
	CashTxnRepo  *repositories.CashTransactionRepository
	Audit        *AuditService

	// Guards against double submits of the same order from two tabs.
	inFlight sync.Map
}

func NewRepairOrderService(orderRepo *repositories.RepairOrderRepository, materialRepo *repositories.MaterialRepository, customerRepo *repositories.CustomerRepository, cashTxnRepo *repositories.CashTransactionRepository, audit *AuditService) *RepairOrderService {
	return &RepairOrderService{
		OrderRepo:    orderRepo,
		MaterialRepo: materialRepo,
		CustomerRepo: customerRepo,
		CashTxnRepo:  cashTxnRepo,
		Audit:        audit,
	}
}

// LoadCatalog snapshots the materials table into the catalog view the draft
// operations work against.
func (s *RepairOrderService) LoadCatalog(ctx context.Context) (repair.Catalog, error) {
	materials, err := s.MaterialRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(repair.Catalog, 0, len(materials))
	for _, m := range materials {
		catalog = append(catalog, repair.CatalogMaterial{
			ID:            m.ID,
			Name:          m.Name,
			SKU:           m.SKU,
			Stock:         m.Stock,
			RetailPrice:   m.RetailPrice,
			PurchasePrice: m.PurchasePrice,
		})
	}
	return catalog, nil
}

func (s *RepairOrderService) GetOrder(ctx context.Context, id string) (*models.RepairOrder, error) {
	order, err := s.OrderRepo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *RepairOrderService) ListOrders(ctx context.Context, status, customerPhone string) ([]*models.RepairOrder, error) {
	if customerPhone != "" {
		return s.OrderRepo.ListByCustomerPhone(ctx, customerPhone)
	}
	if status != "" {
		return s.OrderRepo.ListByStatus(ctx, status)
	}
	return s.OrderRepo.List(ctx)
}

// hydrate builds the draft for a save request: a fresh draft for a new order,
// or the stored order overlaid with the request fields when updating.
func (s *RepairOrderService) hydrate(ctx context.Context, req *models.SaveRepairOrderRequest) (*repair.Draft, bool, error) {
	var draft *repair.Draft
	isNew := req.ID == ""

	if isNew {
		draft = repair.NewDraft(timeutil.Now())
	} else {
		existing, err := s.GetOrder(ctx, req.ID)
		if err != nil {
			return nil, false, err
		}
		if existing.Terminal() {
			return nil, false, repair.ErrTerminal
		}
		draft = repair.EditDraft(existing)
	}

	o := draft.Order
	o.CustomerName = req.CustomerName
	o.CustomerPhone = req.CustomerPhone
	o.DeviceName = req.DeviceName
	o.IssueDescription = req.IssueDescription
	o.TechnicianName = req.TechnicianName
	if req.Status != "" {
		o.Status = req.Status
	}
	o.MaterialsUsed = req.MaterialsUsed
	o.OutsourcingItems = req.OutsourcingItems
	o.LaborCost = req.LaborCost
	o.DepositAmount = req.DepositAmount
	o.PaymentStatus = req.PaymentStatus
	o.PaymentMethod = req.PaymentMethod
	o.PartialPaymentAmount = req.PartialPaymentAmount
	o.DueDate = req.DueDate
	o.Notes = req.Notes
	if req.QuoteApproved && !o.QuoteApproved {
		o.QuoteApproved = true
		now := timeutil.Now()
		o.QuoteApprovedAt = &now
	}
	return draft, isNew, nil
}

// Save validates and persists a repair order. When the save would move the
// order into the returned state for the first time, the stock deduction and
// revenue posting are gated behind a confirmation: the first call returns a
// Confirmation and persists nothing; the client re-sends with
// confirm_deduction set.
func (s *RepairOrderService) Save(ctx context.Context, req *models.SaveRepairOrderRequest, actor repair.Actor, ip, userAgent string) (*models.RepairOrder, *repair.Confirmation, error) {
	draft, isNew, err := s.hydrate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if err := draft.Validate(actor); err != nil {
		return nil, nil, err
	}

	o := draft.Order
	o.Total = draft.Total()
	if isNew {
		o.CreatedByUserID = actor.UserID
	}

	deduct := draft.NeedsDeductionConfirmation()
	if deduct && !req.ConfirmDeduction {
		return nil, &repair.Confirmation{
			Kind:    repair.ConfirmDeduction,
			Message: fmt.Sprintf("Trả máy sẽ trừ kho vật liệu và ghi nhận doanh thu %.0f₫. Tiếp tục?", o.Total),
		}, nil
	}

	if _, loaded := s.inFlight.LoadOrStore(o.ID, true); loaded {
		return nil, nil, ErrSaveInFlight
	}
	defer s.inFlight.Delete(o.ID)

	cashTxn, err := s.paymentPosting(ctx, draft, isNew, actor)
	if err != nil {
		return nil, nil, err
	}
	if cashTxn != nil || deduct {
		now := timeutil.Now()
		if o.PaymentStatus == models.PaymentPaid && o.PaymentDate == nil {
			o.PaymentDate = &now
		}
	}

	if err := s.OrderRepo.SaveFinal(ctx, o, deduct, cashTxn, isNew); err != nil {
		return nil, nil, err
	}

	if deduct {
		metrics.StockDeductions.Inc()
		cache.InvalidateMaterialCaches(ctx)
	}
	cache.InvalidateCustomerCaches(ctx)
	metrics.RepairOrdersSaved.WithLabelValues(o.Status).Inc()

	action := models.ActionUpdate
	if isNew {
		action = models.ActionCreate
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Action:     action,
		Entity:     "repair_order",
		EntityID:   o.ID,
		EntityName: o.CustomerName + " - " + o.DeviceName,
		Metadata: map[string]any{
			"status":         o.Status,
			"total":          o.Total,
			"payment_status": o.PaymentStatus,
			"deducted":       deduct,
		},
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return o, nil, nil
}

// paymentPosting derives the ledger row a save should create, or nil when no
// new money is collected on this save. The amount is counted against what the
// ledger already holds for the order, so a deposit posted at intake is not
// re-posted when the balance is settled.
func (s *RepairOrderService) paymentPosting(ctx context.Context, draft *repair.Draft, isNew bool, actor repair.Actor) (*models.CashTransaction, error) {
	o := draft.Order

	var alreadyPosted float64
	if !isNew {
		posted, err := s.CashTxnRepo.ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range posted {
			if t.Type == models.TxnTypeIncome {
				alreadyPosted += t.Amount
			}
		}
	}

	var collected float64
	var category string
	switch {
	case o.PaymentStatus == models.PaymentPaid:
		collected = o.Total
		category = "repair_payment"
	case o.PaymentStatus == models.PaymentPartial && o.PartialPaymentAmount > 0:
		collected = o.DepositAmount + o.PartialPaymentAmount
		category = "repair_payment"
	case o.DepositAmount > 0:
		collected = o.DepositAmount
		category = "repair_deposit"
	default:
		return nil, nil
	}

	amount := collected - alreadyPosted
	if amount <= 0 {
		return nil, nil
	}

	method := o.PaymentMethod
	if method == "" {
		method = models.MethodCash
	}
	return &models.CashTransaction{
		Type:             models.TxnTypeIncome,
		Category:         category,
		Amount:           amount,
		PaymentMethod:    method,
		Description:      fmt.Sprintf("Đơn sửa chữa %s - %s", o.ID, o.CustomerName),
		ReferenceOrderID: o.ID,
		RecordedByUserID: actor.UserID,
		TransactionDate:  timeutil.Now(),
	}, nil
}

// AddMaterial appends a material line to a stored order through the draft
// rules: shortage and unknown-material cases return a Confirmation without
// persisting until the client confirms.
func (s *RepairOrderService) AddMaterial(ctx context.Context, orderID string, req *models.AddMaterialRequest, actor repair.Actor) (*models.RepairOrder, *repair.Confirmation, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	draft := repair.EditDraft(order)
	conf, err := draft.AddMaterial(catalog, req.Name, req.Quantity, req.Price, req.Confirm)
	if err != nil {
		return nil, nil, err
	}
	if conf != nil {
		return nil, conf, nil
	}

	draft.Order.Total = draft.Total()
	if err := s.OrderRepo.Update(ctx, draft.Order); err != nil {
		return nil, nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Action:     models.ActionUpdate,
		Entity:     "repair_order",
		EntityID:   orderID,
		EntityName: draft.Order.CustomerName + " - " + draft.Order.DeviceName,
		Metadata:   map[string]any{"added_material": req.Name, "quantity": req.Quantity},
	})
	return draft.Order, nil, nil
}

func (s *RepairOrderService) RemoveMaterial(ctx context.Context, orderID string, index int, actor repair.Actor) (*models.RepairOrder, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	draft := repair.EditDraft(order)
	if err := draft.RemoveMaterial(index); err != nil {
		return nil, err
	}
	draft.Order.Total = draft.Total()
	if err := s.OrderRepo.Update(ctx, draft.Order); err != nil {
		return nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionUpdate,
		Entity:   "repair_order",
		EntityID: orderID,
		Metadata: map[string]any{"removed_material_index": index},
	})
	return draft.Order, nil
}

// AddOutsourcing appends a sub-contracted work line; a line without a cost
// price needs a margin confirmation first.
func (s *RepairOrderService) AddOutsourcing(ctx context.Context, orderID string, req *models.AddOutsourcingRequest, actor repair.Actor) (*models.RepairOrder, *repair.Confirmation, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	draft := repair.EditDraft(order)
	conf, err := draft.AddOutsourcing(req.Description, req.Quantity, req.CostPrice, req.SellingPrice, req.Confirm)
	if err != nil {
		return nil, nil, err
	}
	if conf != nil {
		return nil, conf, nil
	}
	draft.Order.Total = draft.Total()
	if err := s.OrderRepo.Update(ctx, draft.Order); err != nil {
		return nil, nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionUpdate,
		Entity:   "repair_order",
		EntityID: orderID,
		Metadata: map[string]any{"added_outsourcing": req.Description},
	})
	return draft.Order, nil, nil
}

func (s *RepairOrderService) RemoveOutsourcing(ctx context.Context, orderID string, index int, actor repair.Actor) (*models.RepairOrder, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	draft := repair.EditDraft(order)
	if err := draft.RemoveOutsourcing(index); err != nil {
		return nil, err
	}
	draft.Order.Total = draft.Total()
	if err := s.OrderRepo.Update(ctx, draft.Order); err != nil {
		return nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionUpdate,
		Entity:   "repair_order",
		EntityID: orderID,
		Metadata: map[string]any{"removed_outsourcing_index": index},
	})
	return draft.Order, nil
}

// Shortages recomputes the outstanding material shortages of an order
// against live stock.
func (s *RepairOrderService) Shortages(ctx context.Context, orderID string) ([]repair.ShortageInfo, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return repair.EditDraft(order).Shortages(catalog), nil
}

// Summary returns the derived totals and screen labels for an order.
func (s *RepairOrderService) Summary(ctx context.Context, orderID string) (*repair.Summary, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	sum := repair.EditDraft(order).Summarize(true)
	return &sum, nil
}

// Cancel moves a non-terminal order to the cancelled state.
func (s *RepairOrderService) Cancel(ctx context.Context, orderID string, actor repair.Actor) (*models.RepairOrder, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		return nil, repair.ErrTerminal
	}
	order.Status = models.StatusCancelled
	if err := s.OrderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Action:     models.ActionUpdate,
		Entity:     "repair_order",
		EntityID:   orderID,
		EntityName: order.CustomerName + " - " + order.DeviceName,
		Metadata:   map[string]any{"status": models.StatusCancelled},
	})
	return order, nil
}

// Delete removes an order entirely. Admin only; terminal orders stay.
func (s *RepairOrderService) Delete(ctx context.Context, orderID string, actor repair.Actor) error {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Terminal() {
		return repair.ErrTerminal
	}
	if err := s.OrderRepo.Delete(ctx, orderID); err != nil {
		return err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Action:     models.ActionDelete,
		Entity:     "repair_order",
		EntityID:   orderID,
		EntityName: order.CustomerName + " - " + order.DeviceName,
	})
	return nil
}
