package repair

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"repair-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrTerminal is returned for any mutation attempted on an order that has
	// been returned, fully paid and stock-deducted.
	ErrTerminal = errors.New("order is finalized and can no longer be edited")

	ErrMaterialName     = errors.New("material name is required")
	ErrQuantity         = errors.New("quantity must be greater than zero")
	ErrDescription      = errors.New("description is required")
	ErrIndexOutOfRange  = errors.New("line index out of range")
)

// Confirmation kinds
const (
	ConfirmShortage    = "shortage"     // requested quantity exceeds available stock
	ConfirmNewMaterial = "new_material" // material not in catalog, needs supplier order
	ConfirmZeroMargin  = "zero_margin"  // outsourcing line with no cost price
	ConfirmDeduction   = "deduction"    // terminal transition will deduct stock and post revenue
)

// Confirmation describes a pending action that needs explicit user
// acknowledgment before it is applied. It is informational, never an error:
// re-running the operation with the confirm flag set applies the action.
type Confirmation struct {
	Kind         string  `json:"kind"`
	Message      string  `json:"message"`
	MaterialName string  `json:"material_name,omitempty"`
	Needed       float64 `json:"needed,omitempty"`
	InStock      float64 `json:"in_stock,omitempty"`
	Shortage     float64 `json:"shortage,omitempty"`
}

// Actor is the authenticated user performing draft operations.
type Actor struct {
	UserID int
	Name   string
}

// Draft wraps an in-progress repair order. All edits go through its methods
// so the terminal lock and line invariants hold; the wrapped order is handed
// off wholesale on submit.
type Draft struct {
	Order *models.RepairOrder
}

// NewOrderID builds a human-readable order id: date prefix plus a random
// suffix, e.g. SC-20261114-4827.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("SC-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

// newLineID builds an id for draft-local lines and not-yet-cataloged materials.
func newLineID(prefix string) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
}

// NewDraft starts an empty draft for a new repair order.
func NewDraft(now time.Time) *Draft {
	return &Draft{Order: &models.RepairOrder{
		ID:            NewOrderID(now),
		CreationDate:  now,
		Status:        models.StatusIntake,
		PaymentStatus: models.PaymentUnpaid,
	}}
}

// EditDraft opens an existing order for editing. The caller keeps ownership
// of the original; nothing is persisted until the draft is submitted.
func EditDraft(order *models.RepairOrder) *Draft {
	copied := *order
	copied.MaterialsUsed = append([]models.MaterialUsed(nil), order.MaterialsUsed...)
	copied.OutsourcingItems = append([]models.OutsourcingItem(nil), order.OutsourcingItems...)
	return &Draft{Order: &copied}
}

func (d *Draft) Terminal() bool {
	return d.Order.Terminal()
}

// usedInDraft sums quantities of the given material already on the draft,
// optionally skipping one line index (when re-evaluating an existing line).
func (d *Draft) usedInDraft(materialID string, skip int) float64 {
	var used float64
	for i, line := range d.Order.MaterialsUsed {
		if i == skip {
			continue
		}
		if line.MaterialID == materialID {
			used += line.Quantity
		}
	}
	return used
}

// AddMaterial adds a material line to the draft. The material is matched
// case-insensitively against the catalog; available stock accounts for other
// lines of the same material already on the draft. When the quantity exceeds
// availability, or the material is unknown to the catalog, a Confirmation is
// returned and nothing is applied unless confirmed is set. The shortage tag
// on the applied line records the deficit at add-time.
func (d *Draft) AddMaterial(catalog Catalog, name string, quantity, price float64, confirmed bool) (*Confirmation, error) {
	if d.Terminal() {
		return nil, ErrTerminal
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMaterialName
	}
	if quantity <= 0 {
		return nil, ErrQuantity
	}
	if price < 0 {
		return nil, errors.New("price cannot be negative")
	}

	mat, found := catalog.FindByName(name)
	if !found {
		// Unknown material: treat as a new material to be ordered from a supplier.
		if !confirmed {
			return &Confirmation{
				Kind:         ConfirmNewMaterial,
				Message:      fmt.Sprintf("Vật liệu \"%s\" chưa có trong kho, cần đặt từ nhà cung cấp", name),
				MaterialName: name,
				Needed:       quantity,
				InStock:      0,
				Shortage:     quantity,
			}, nil
		}
		d.Order.MaterialsUsed = append(d.Order.MaterialsUsed, models.MaterialUsed{
			MaterialID:   newLineID("new"),
			MaterialName: name,
			Quantity:     quantity,
			Price:        price,
			InStock:      0,
			Shortage:     quantity,
			IsNew:        true,
		})
		return nil, nil
	}

	// Availability can go negative when earlier confirmed lines already
	// over-claim the stock; the deficit of this line then exceeds its quantity.
	available := mat.Stock - d.usedInDraft(mat.ID, -1)
	var shortage float64
	if quantity > available {
		shortage = quantity - available
		if !confirmed {
			return &Confirmation{
				Kind:         ConfirmShortage,
				Message:      fmt.Sprintf("Kho chỉ còn %.0f \"%s\", thiếu %.0f", max(available, 0), mat.Name, shortage),
				MaterialName: mat.Name,
				Needed:       quantity,
				InStock:      max(available, 0),
				Shortage:     shortage,
			}, nil
		}
	}

	line := models.MaterialUsed{
		MaterialID:   mat.ID,
		MaterialName: mat.Name,
		Quantity:     quantity,
		Price:        price,
		InStock:      mat.Stock,
	}
	if shortage > 0 {
		line.Shortage = shortage
	}
	d.Order.MaterialsUsed = append(d.Order.MaterialsUsed, line)
	return nil, nil
}

// RemoveMaterial removes a material line. Removal needs no confirmation.
func (d *Draft) RemoveMaterial(index int) error {
	if d.Terminal() {
		return ErrTerminal
	}
	if index < 0 || index >= len(d.Order.MaterialsUsed) {
		return ErrIndexOutOfRange
	}
	d.Order.MaterialsUsed = append(d.Order.MaterialsUsed[:index], d.Order.MaterialsUsed[index+1:]...)
	return nil
}

// AddOutsourcing adds a sub-contracted work line. A zero (or negative) cost
// price raises a margin warning confirmation; the line total is frozen at
// quantity * selling price.
func (d *Draft) AddOutsourcing(description string, quantity, costPrice, sellingPrice float64, confirmed bool) (*Confirmation, error) {
	if d.Terminal() {
		return nil, ErrTerminal
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescription
	}
	if quantity <= 0 {
		return nil, ErrQuantity
	}
	if sellingPrice < 0 || costPrice < 0 {
		return nil, errors.New("price cannot be negative")
	}
	if costPrice == 0 && !confirmed {
		return &Confirmation{
			Kind:    ConfirmZeroMargin,
			Message: fmt.Sprintf("Mục gia công \"%s\" chưa có giá vốn, không tính được lợi nhuận", description),
		}, nil
	}

	total, _ := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(sellingPrice)).Float64()
	d.Order.OutsourcingItems = append(d.Order.OutsourcingItems, models.OutsourcingItem{
		ID:           newLineID("out"),
		Description:  description,
		Quantity:     quantity,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
		Total:        total,
	})
	return nil, nil
}

// RemoveOutsourcing removes an outsourced work line.
func (d *Draft) RemoveOutsourcing(index int) error {
	if d.Terminal() {
		return ErrTerminal
	}
	if index < 0 || index >= len(d.Order.OutsourcingItems) {
		return ErrIndexOutOfRange
	}
	d.Order.OutsourcingItems = append(d.Order.OutsourcingItems[:index], d.Order.OutsourcingItems[index+1:]...)
	return nil
}

// MaterialsTotal sums quantity * price across material lines.
func (d *Draft) MaterialsTotal() float64 {
	sum := decimal.Zero
	for _, m := range d.Order.MaterialsUsed {
		sum = sum.Add(decimal.NewFromFloat(m.Quantity).Mul(decimal.NewFromFloat(m.Price)))
	}
	f, _ := sum.Float64()
	return f
}

// OutsourcingTotal sums the frozen line totals.
func (d *Draft) OutsourcingTotal() float64 {
	sum := decimal.Zero
	for _, o := range d.Order.OutsourcingItems {
		sum = sum.Add(decimal.NewFromFloat(o.Total))
	}
	f, _ := sum.Float64()
	return f
}

// Total = materials + outsourcing + labor. Always recomputed from the lines,
// never read from a stored value, until the draft is submitted.
func (d *Draft) Total() float64 {
	sum := decimal.NewFromFloat(d.MaterialsTotal()).
		Add(decimal.NewFromFloat(d.OutsourcingTotal())).
		Add(decimal.NewFromFloat(d.Order.LaborCost))
	f, _ := sum.Float64()
	return f
}

// Remaining clamps at zero: an over-deposit is not rejected, the balance is
// simply nothing left to collect.
func (d *Draft) Remaining() float64 {
	rem := decimal.NewFromFloat(d.Total()).Sub(decimal.NewFromFloat(d.Order.DepositAmount))
	if rem.IsNegative() {
		return 0
	}
	f, _ := rem.Float64()
	return f
}

// Validate runs the submit validation sequence in order, short-circuiting on
// the first failure. Customer auto-creation and the terminal-transition
// confirmation gate are persistence concerns handled by the service.
func (d *Draft) Validate(actor Actor) error {
	if actor.UserID <= 0 {
		return errors.New("bạn cần đăng nhập để lưu đơn sửa chữa")
	}
	o := d.Order
	if strings.TrimSpace(o.CustomerName) == "" {
		return errors.New("tên khách hàng là bắt buộc")
	}
	if strings.TrimSpace(o.CustomerPhone) == "" {
		return errors.New("số điện thoại khách hàng là bắt buộc")
	}
	if strings.TrimSpace(o.IssueDescription) == "" {
		return errors.New("mô tả lỗi là bắt buộc")
	}
	if d.Total() <= 0 {
		return errors.New("đơn sửa chữa phải có giá trị lớn hơn 0")
	}
	if o.DepositAmount > 0 || o.PaymentStatus == models.PaymentPaid || o.PaymentStatus == models.PaymentPartial {
		switch o.PaymentMethod {
		case models.MethodCash, models.MethodTransfer, models.MethodCard:
		default:
			return errors.New("vui lòng chọn phương thức thanh toán")
		}
	}
	if o.PaymentStatus == models.PaymentPartial {
		if o.PartialPaymentAmount <= 0 || o.PartialPaymentAmount >= d.Total() {
			return errors.New("số tiền thanh toán một phần phải lớn hơn 0 và nhỏ hơn tổng tiền")
		}
	}
	return nil
}

// NeedsDeductionConfirmation reports whether finalizing with the given status
// triggers the side-effect gate: moving to the returned state on an order
// whose materials have not yet been deducted means stock deduction, revenue
// recognition and a payment posting will happen on save.
func (d *Draft) NeedsDeductionConfirmation() bool {
	return d.Order.Status == models.StatusReturned && !d.Order.MaterialsDeducted
}
