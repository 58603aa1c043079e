package services

import (
	"bytes"
	"context"
	"fmt"

	"repair-backend/internal/models"
	"repair-backend/internal/repair"
	"repair-backend/internal/repositories"
	"repair-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// QuoteService renders the printable quote for a repair order. The PDF uses
// core fonts, so Vietnamese text is printed unsigned (khong dau).
type QuoteService struct {
	OrderRepo    *repositories.RepairOrderRepository
	MaterialRepo *repositories.MaterialRepository
	SettingRepo  *repositories.SystemSettingRepository
	Audit        *AuditService
}

func NewQuoteService(orderRepo *repositories.RepairOrderRepository, materialRepo *repositories.MaterialRepository, settingRepo *repositories.SystemSettingRepository, audit *AuditService) *QuoteService {
	return &QuoteService{
		OrderRepo:    orderRepo,
		MaterialRepo: materialRepo,
		SettingRepo:  settingRepo,
		Audit:        audit,
	}
}

func (s *QuoteService) setting(ctx context.Context, key, fallback string) string {
	if s.SettingRepo == nil {
		return fallback
	}
	setting, err := s.SettingRepo.Get(ctx, key)
	if err != nil || setting.SettingValue == "" {
		return fallback
	}
	return setting.SettingValue
}

// GenerateQuotePDF renders the quote for one order.
func (s *QuoteService) GenerateQuotePDF(ctx context.Context, orderID string, actor repair.Actor) ([]byte, error) {
	order, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	draft := repair.EditDraft(order)

	shopName := s.setting(ctx, models.SettingShopName, "Pin Corp")
	shopAddress := s.setting(ctx, models.SettingShopAddress, "")
	shopPhone := s.setting(ctx, models.SettingShopPhone, "")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, tr(shopName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if shopAddress != "" {
		pdf.CellFormat(190, 5, tr(shopAddress), "", 1, "C", false, 0, "")
	}
	if shopPhone != "" {
		pdf.CellFormat(190, 5, tr("DT: "+shopPhone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, "BAO GIA SUA CHUA", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("So: %s | Ngay: %s", order.ID, timeutil.ToICT(order.CreationDate).Format("02/01/2006")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Customer / device box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 7, "Thong tin khach hang", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, tr("Khach hang: "+order.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "SDT: "+order.CustomerPhone, "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 6, tr("Thiet bi: "+order.DeviceName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, tr("Ky thuat: "+order.TechnicianName), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 6, tr("Loi: "+order.IssueDescription), "LRB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Materials table
	if len(order.MaterialsUsed) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(190, 7, "Vat lieu", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(210, 210, 210)
		pdf.CellFormat(90, 6, "Ten vat lieu", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 6, "SL", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 6, "Don gia", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 6, "Thanh tien", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, m := range order.MaterialsUsed {
			name := m.MaterialName
			if m.IsNew {
				name += " (dat hang)"
			}
			pdf.CellFormat(90, 6, tr(name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.0f", m.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", m.Price), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", m.Quantity*m.Price), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
	}

	// Outsourcing table
	if len(order.OutsourcingItems) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 7, "Gia cong ngoai", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(210, 210, 210)
		pdf.CellFormat(110, 6, "Noi dung", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 6, "SL", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 6, "Thanh tien", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, o := range order.OutsourcingItems {
			pdf.CellFormat(110, 6, tr(o.Description), "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.0f", o.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, fmt.Sprintf("%.0f", o.Total), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
	}

	// Totals
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(150, 6, "Tien vat lieu:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", draft.MaterialsTotal()), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 6, "Tien gia cong:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", draft.OutsourcingTotal()), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 6, "Tien cong:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", order.LaborCost), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 8, "TONG CONG:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.0f d", draft.Total()), "", 1, "R", false, 0, "")
	if order.DepositAmount > 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(150, 6, "Da dat coc:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", order.DepositAmount), "", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(150, 6, "Con lai:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.0f d", draft.Remaining()), "", 1, "R", false, 0, "")
	}

	// Shortage notice
	materials, err := s.MaterialRepo.List(ctx)
	if err == nil {
		catalog := make(repair.Catalog, 0, len(materials))
		for _, m := range materials {
			catalog = append(catalog, repair.CatalogMaterial{ID: m.ID, Name: m.Name, Stock: m.Stock})
		}
		if shortages := draft.Shortages(catalog); len(shortages) > 0 {
			pdf.Ln(3)
			pdf.SetFont("Arial", "B", 10)
			pdf.SetTextColor(180, 60, 0)
			pdf.CellFormat(190, 6, "Luu y: mot so vat lieu can dat them, thoi gian sua co the keo dai.", "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			for _, sh := range shortages {
				pdf.CellFormat(190, 5, tr(fmt.Sprintf("- %s: can %.0f, thieu %.0f", sh.MaterialName, sh.Needed, sh.Shortage)), "", 1, "L", false, 0, "")
			}
			pdf.SetTextColor(0, 0, 0)
		}
	}

	// Signatures
	pdf.Ln(12)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 6, "Khach hang", "", 0, "C", false, 0, "")
	pdf.CellFormat(95, 6, "Cua hang", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(95, 5, "(Ky, ghi ro ho ten)", "", 0, "C", false, 0, "")
	pdf.CellFormat(95, 5, "(Ky, ghi ro ho ten)", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Action:     models.ActionExport,
		Entity:     "repair_order",
		EntityID:   order.ID,
		EntityName: order.CustomerName + " - " + order.DeviceName,
		Metadata:   map[string]any{"document": "quote"},
	})
	return buf.Bytes(), nil
}
