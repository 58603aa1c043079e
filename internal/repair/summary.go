package repair

// Summary is the derived presentation of a draft: monetary totals plus the
// header/button text the editing screen shows. Pure projection, no side
// effects.
type Summary struct {
	MaterialsTotal   float64 `json:"materials_total"`
	OutsourcingTotal float64 `json:"outsourcing_total"`
	LaborCost        float64 `json:"labor_cost"`
	DepositAmount    float64 `json:"deposit_amount"`
	Total            float64 `json:"total"`
	Remaining        float64 `json:"remaining"`
	Terminal         bool    `json:"terminal"`
	HeaderTitle      string  `json:"header_title"`
	SubmitLabel      string  `json:"submit_label"`
}

// Summarize derives the totals and labels for the draft. editing is true when
// an existing order is open rather than a new one being created.
func (d *Draft) Summarize(editing bool) Summary {
	s := Summary{
		MaterialsTotal:   d.MaterialsTotal(),
		OutsourcingTotal: d.OutsourcingTotal(),
		LaborCost:        d.Order.LaborCost,
		DepositAmount:    d.Order.DepositAmount,
		Total:            d.Total(),
		Remaining:        d.Remaining(),
		Terminal:         d.Terminal(),
	}
	switch {
	case s.Terminal:
		s.HeaderTitle = "Đơn sửa chữa " + d.Order.ID + " (đã hoàn tất)"
		s.SubmitLabel = "Đã khóa"
	case editing:
		s.HeaderTitle = "Cập nhật đơn " + d.Order.ID
		s.SubmitLabel = "Cập nhật đơn"
	default:
		s.HeaderTitle = "Tạo đơn sửa chữa mới"
		s.SubmitLabel = "Tạo đơn"
	}
	return s
}
