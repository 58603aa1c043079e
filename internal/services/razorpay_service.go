package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"repair-backend/internal/models"
	"repair-backend/internal/repositories"

	razorpay "github.com/razorpay/razorpay-go"
)

var ErrOnlinePaymentsDisabled = errors.New("online payments are currently disabled")

// RazorpayService collects an order's outstanding balance through the
// payment gateway. It is config-gated: without credentials and the settings
// toggle, every entry point refuses.
type RazorpayService struct {
	TxnRepo     *repositories.OnlineTransactionRepository
	CashTxnRepo *repositories.CashTransactionRepository
	OrderRepo   *repositories.RepairOrderRepository
	SettingRepo *repositories.SystemSettingRepository
	Audit       *AuditService

	keyID     string
	keySecret string
}

func NewRazorpayService(keyID, keySecret string, txnRepo *repositories.OnlineTransactionRepository, cashTxnRepo *repositories.CashTransactionRepository, orderRepo *repositories.RepairOrderRepository, settingRepo *repositories.SystemSettingRepository, audit *AuditService) *RazorpayService {
	return &RazorpayService{
		TxnRepo:     txnRepo,
		CashTxnRepo: cashTxnRepo,
		OrderRepo:   orderRepo,
		SettingRepo: settingRepo,
		Audit:       audit,
		keyID:       keyID,
		keySecret:   keySecret,
	}
}

// IsEnabled checks the settings toggle; credentials are checked at use time.
func (s *RazorpayService) IsEnabled(ctx context.Context) bool {
	setting, err := s.SettingRepo.Get(ctx, models.SettingOnlinePayments)
	if err != nil {
		return false
	}
	return setting.SettingValue == "true"
}

func (s *RazorpayService) client() *razorpay.Client {
	if s.keyID == "" || s.keySecret == "" {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// CreateOrder opens a gateway order for the outstanding balance of a repair
// order and stores the pending transaction.
func (s *RazorpayService) CreateOrder(ctx context.Context, req *models.CreateOnlinePaymentRequest) (*models.CreateOrderResponse, error) {
	if !s.IsEnabled(ctx) {
		return nil, ErrOnlinePaymentsDisabled
	}
	client := s.client()
	if client == nil {
		return nil, errors.New("payment gateway is not configured")
	}
	if req.Amount <= 0 {
		return nil, errors.New("amount must be greater than zero")
	}

	order, err := s.OrderRepo.Get(ctx, req.RepairOrderID)
	if err != nil {
		return nil, fmt.Errorf("repair order not found: %w", err)
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, errors.New("order is already fully paid")
	}

	amountMinor := int64(req.Amount * 100)
	gatewayOrder, err := client.Order.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": "VND",
		"receipt":  fmt.Sprintf("rcpt_%s_%d", order.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"repair_order_id": order.ID,
			"customer_phone":  order.CustomerPhone,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}
	gatewayOrderID, _ := gatewayOrder["id"].(string)
	if gatewayOrderID == "" {
		return nil, errors.New("gateway returned no order id")
	}

	txn := &models.OnlineTransaction{
		GatewayOrderID: gatewayOrderID,
		RepairOrderID:  order.ID,
		CustomerName:   order.CustomerName,
		CustomerPhone:  order.CustomerPhone,
		Amount:         req.Amount,
		Status:         models.OnlineTxStatusPending,
	}
	if err := s.TxnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	return &models.CreateOrderResponse{
		OrderID:       gatewayOrderID,
		Amount:        amountMinor,
		Currency:      "VND",
		KeyID:         s.keyID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
	}, nil
}

// VerifyPayment validates the gateway signature and, on success, posts the
// capture to the cash ledger and updates the order's payment standing.
func (s *RazorpayService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.OnlineTransaction, error) {
	txn, err := s.TxnRepo.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}
	if txn.Status == models.OnlineTxStatusSuccess {
		return txn, nil
	}

	if !s.verifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		_ = s.TxnRepo.MarkFailed(ctx, txn.ID, "invalid signature")
		return nil, errors.New("invalid payment signature")
	}

	cashTxn := &models.CashTransaction{
		Type:             models.TxnTypeIncome,
		Category:         "repair_payment",
		Amount:           txn.Amount,
		PaymentMethod:    models.MethodTransfer,
		Description:      fmt.Sprintf("Thanh toan online don %s", txn.RepairOrderID),
		ReferenceOrderID: txn.RepairOrderID,
		TransactionDate:  time.Now(),
	}
	if err := s.CashTxnRepo.Create(ctx, cashTxn); err != nil {
		return nil, err
	}
	if err := s.TxnRepo.MarkSuccess(ctx, txn.ID, req.GatewayPaymentID, req.GatewaySignature, cashTxn.ID); err != nil {
		return nil, err
	}

	// Settle the order's standing against what the ledger now holds.
	if order, err := s.OrderRepo.Get(ctx, txn.RepairOrderID); err == nil {
		posted, _ := s.CashTxnRepo.ListByOrder(ctx, order.ID)
		var collected float64
		for _, t := range posted {
			if t.Type == models.TxnTypeIncome {
				collected += t.Amount
			}
		}
		if collected >= order.Total {
			order.PaymentStatus = models.PaymentPaid
			now := time.Now()
			order.PaymentDate = &now
		} else {
			order.PaymentStatus = models.PaymentPartial
			order.PartialPaymentAmount = collected - order.DepositAmount
		}
		if order.PaymentMethod == "" {
			order.PaymentMethod = models.MethodTransfer
		}
		_ = s.OrderRepo.Update(ctx, order)
	}

	s.Audit.Log(ctx, &models.AuditLog{
		Action:     models.ActionUpdate,
		Entity:     "repair_order",
		EntityID:   txn.RepairOrderID,
		EntityName: txn.CustomerName,
		UserName:   "gateway",
		Metadata:   map[string]any{"online_payment": txn.Amount, "gateway_order": txn.GatewayOrderID},
	})

	result, err := s.TxnRepo.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return txn, nil
	}
	return result, nil
}

func (s *RazorpayService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
