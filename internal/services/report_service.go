package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"repair-backend/internal/models"
	"repair-backend/internal/repair"
	"repair-backend/internal/repositories"
	"repair-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// RevenueReportData aggregates one reporting period.
type RevenueReportData struct {
	From            time.Time                 `json:"from"`
	To              time.Time                 `json:"to"`
	Orders          []*models.RepairOrder     `json:"orders"`
	Transactions    []*models.CashTransaction `json:"transactions"`
	OrderCount      int                       `json:"order_count"`
	CompletedCount  int                       `json:"completed_count"`
	Revenue         float64                   `json:"revenue"`
	Expenses        float64                   `json:"expenses"`
	MaterialsProfit float64                   `json:"materials_profit"`
	LaborRevenue    float64                   `json:"labor_revenue"`
	GrossProfit     float64                   `json:"gross_profit"`
}

type ReportService struct {
	OrderRepo    *repositories.RepairOrderRepository
	CashTxnRepo  *repositories.CashTransactionRepository
	MaterialRepo *repositories.MaterialRepository
	SettingRepo  *repositories.SystemSettingRepository
	Audit        *AuditService
}

func NewReportService(orderRepo *repositories.RepairOrderRepository, cashTxnRepo *repositories.CashTransactionRepository, materialRepo *repositories.MaterialRepository, settingRepo *repositories.SystemSettingRepository, audit *AuditService) *ReportService {
	return &ReportService{
		OrderRepo:    orderRepo,
		CashTxnRepo:  cashTxnRepo,
		MaterialRepo: materialRepo,
		SettingRepo:  settingRepo,
		Audit:        audit,
	}
}

// BuildRevenueReport aggregates orders and ledger rows for [from, to).
// Revenue is what the ledger collected; the profit figures come from the
// line-level margins of returned orders.
func (s *ReportService) BuildRevenueReport(ctx context.Context, from, to time.Time) (*RevenueReportData, error) {
	orders, err := s.OrderRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	txns, err := s.CashTxnRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	materials, err := s.MaterialRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	purchasePrices := make(map[string]float64, len(materials))
	for _, m := range materials {
		purchasePrices[m.ID] = m.PurchasePrice
	}

	data := &RevenueReportData{
		From:         from,
		To:           to,
		Orders:       orders,
		Transactions: txns,
		OrderCount:   len(orders),
	}

	revenue := decimal.Zero
	expenses := decimal.Zero
	for _, t := range txns {
		amt := decimal.NewFromFloat(t.Amount)
		if t.Type == models.TxnTypeIncome {
			revenue = revenue.Add(amt)
		} else {
			expenses = expenses.Add(amt)
		}
	}

	matProfit := decimal.Zero
	labor := decimal.Zero
	for _, o := range orders {
		if o.Status != models.StatusReturned {
			continue
		}
		data.CompletedCount++
		labor = labor.Add(decimal.NewFromFloat(o.LaborCost))
		for _, mu := range o.MaterialsUsed {
			margin := decimal.NewFromFloat(mu.Price).Sub(decimal.NewFromFloat(purchasePrices[mu.MaterialID]))
			matProfit = matProfit.Add(margin.Mul(decimal.NewFromFloat(mu.Quantity)))
		}
		for _, oi := range o.OutsourcingItems {
			margin := decimal.NewFromFloat(oi.SellingPrice).Sub(decimal.NewFromFloat(oi.CostPrice))
			matProfit = matProfit.Add(margin.Mul(decimal.NewFromFloat(oi.Quantity)))
		}
	}

	data.Revenue, _ = revenue.Float64()
	data.Expenses, _ = expenses.Float64()
	data.MaterialsProfit, _ = matProfit.Float64()
	data.LaborRevenue, _ = labor.Float64()
	data.GrossProfit, _ = matProfit.Add(labor).Float64()
	return data, nil
}

// GenerateRevenuePDF renders the period report. Landscape for the order table.
func (s *ReportService) GenerateRevenuePDF(ctx context.Context, data *RevenueReportData, actor repair.Actor) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "BAO CAO DOANH THU", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Tu %s den %s | In ngay %s",
		timeutil.ToICT(data.From).Format("02/01/2006"),
		timeutil.ToICT(data.To).Format("02/01/2006"),
		timeutil.Now().Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Summary row
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(55, 8, fmt.Sprintf("Don: %d", data.OrderCount), "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, fmt.Sprintf("Tra may: %d", data.CompletedCount), "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, fmt.Sprintf("Thu: %.0f", data.Revenue), "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, fmt.Sprintf("Chi: %.0f", data.Expenses), "1", 0, "C", true, 0, "")
	pdf.CellFormat(57, 8, fmt.Sprintf("Loi nhuan gop: %.0f", data.GrossProfit), "1", 1, "C", true, 0, "")
	pdf.Ln(4)

	// Order table
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(210, 210, 210)
	pdf.CellFormat(40, 7, "Ma don", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Ngay", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Khach hang", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Thiet bi", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Trang thai", "1", 0, "C", true, 0, "")
	pdf.CellFormat(37, 7, "Tong tien", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Thanh toan", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, o := range data.Orders {
		device := o.DeviceName
		if len(device) > 30 {
			device = device[:27] + "..."
		}
		name := o.CustomerName
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		pdf.CellFormat(40, 6, o.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, timeutil.ToICT(o.CreationDate).Format("02/01/06"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, tr(device), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, tr(o.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(37, 6, fmt.Sprintf("%.0f", o.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, o.PaymentStatus, "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionExport,
		Entity:   "report",
		EntityID: "revenue",
		Metadata: map[string]any{"format": "pdf", "orders": data.OrderCount},
	})
	return buf.Bytes(), nil
}

// GenerateRevenueCSV writes the order table of the period as CSV.
func (s *ReportService) GenerateRevenueCSV(ctx context.Context, data *RevenueReportData, actor repair.Actor) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"order_id", "date", "customer", "phone", "device", "status", "total", "payment_status", "payment_method"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, o := range data.Orders {
		row := []string{
			o.ID,
			timeutil.ToICT(o.CreationDate).Format("2006-01-02"),
			o.CustomerName,
			o.CustomerPhone,
			o.DeviceName,
			o.Status,
			fmt.Sprintf("%.0f", o.Total),
			o.PaymentStatus,
			o.PaymentMethod,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Write([]string{})
	w.Write([]string{"revenue", fmt.Sprintf("%.0f", data.Revenue)})
	w.Write([]string{"expenses", fmt.Sprintf("%.0f", data.Expenses)})
	w.Write([]string{"gross_profit", fmt.Sprintf("%.0f", data.GrossProfit)})
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionExport,
		Entity:   "report",
		EntityID: "revenue",
		Metadata: map[string]any{"format": "csv", "orders": data.OrderCount},
	})
	return buf.Bytes(), nil
}

// GenerateDayBookCSV exports the cash ledger rows of the period, one row per
// posting, with running income/expense totals in the trailer.
func (s *ReportService) GenerateDayBookCSV(ctx context.Context, from, to time.Time, actor repair.Actor) ([]byte, error) {
	txns, err := s.CashTxnRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "date", "type", "category", "amount", "payment_method", "order_id", "recorded_by", "description"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txns {
		amt := decimal.NewFromFloat(t.Amount)
		if t.Type == models.TxnTypeIncome {
			income = income.Add(amt)
		} else {
			expense = expense.Add(amt)
		}
		row := []string{
			fmt.Sprintf("%d", t.ID),
			timeutil.ToICT(t.TransactionDate).Format("2006-01-02 15:04"),
			t.Type,
			t.Category,
			fmt.Sprintf("%.0f", t.Amount),
			t.PaymentMethod,
			t.ReferenceOrderID,
			t.RecordedByName,
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Write([]string{})
	in, _ := income.Float64()
	ex, _ := expense.Float64()
	net, _ := income.Sub(expense).Float64()
	w.Write([]string{"total_income", fmt.Sprintf("%.0f", in)})
	w.Write([]string{"total_expense", fmt.Sprintf("%.0f", ex)})
	w.Write([]string{"net", fmt.Sprintf("%.0f", net)})
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionExport,
		Entity:   "report",
		EntityID: "daybook",
		Metadata: map[string]any{"format": "csv", "transactions": len(txns)},
	})
	return buf.Bytes(), nil
}
