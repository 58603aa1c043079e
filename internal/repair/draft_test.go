package repair

import (
	"strings"
	"testing"
	"time"

	"repair-backend/internal/models"
)

func testCatalog() Catalog {
	return Catalog{
		{ID: "m1", Name: "Pin iPhone 11", SKU: "PIN-IP11", Stock: 10, RetailPrice: 450000, PurchasePrice: 300000},
		{ID: "m2", Name: "Màn hình Samsung A52", SKU: "LCD-A52", Stock: 2, RetailPrice: 1200000, PurchasePrice: 900000},
		{ID: "m3", Name: "Cáp sạc Type-C", SKU: "CAP-TC", Stock: 0, RetailPrice: 50000, PurchasePrice: 20000},
	}
}

func newTestDraft() *Draft {
	return NewDraft(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
}

func mustAdd(t *testing.T, d *Draft, cat Catalog, name string, qty, price float64) {
	t.Helper()
	conf, err := d.AddMaterial(cat, name, qty, price, true)
	if err != nil {
		t.Fatalf("AddMaterial(%s): %v", name, err)
	}
	if conf != nil {
		t.Fatalf("AddMaterial(%s): unexpected confirmation after confirm=true: %+v", name, conf)
	}
}

func TestNewDraftDefaults(t *testing.T) {
	d := newTestDraft()
	if !strings.HasPrefix(d.Order.ID, "SC-20260830-") {
		t.Errorf("order id = %q, want SC-20260830-XXXX", d.Order.ID)
	}
	if d.Order.Status != models.StatusIntake {
		t.Errorf("status = %q, want %q", d.Order.Status, models.StatusIntake)
	}
	if d.Order.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("payment status = %q, want %q", d.Order.PaymentStatus, models.PaymentUnpaid)
	}
}

func TestTotalsScenario(t *testing.T) {
	// One material 2 x 100000, one outsourcing 1 x 50000, labor 30000,
	// deposit 100000 => total 280000, remaining 180000.
	d := newTestDraft()
	mustAdd(t, d, testCatalog(), "Pin iPhone 11", 2, 100000)
	if _, err := d.AddOutsourcing("Ép kính", 1, 20000, 50000, false); err != nil {
		t.Fatalf("AddOutsourcing: %v", err)
	}
	d.Order.LaborCost = 30000
	d.Order.DepositAmount = 100000

	if got := d.Total(); got != 280000 {
		t.Errorf("Total = %v, want 280000", got)
	}
	if got := d.Remaining(); got != 180000 {
		t.Errorf("Remaining = %v, want 180000", got)
	}
	if got := d.MaterialsTotal(); got != 200000 {
		t.Errorf("MaterialsTotal = %v, want 200000", got)
	}
	if got := d.OutsourcingTotal(); got != 50000 {
		t.Errorf("OutsourcingTotal = %v, want 50000", got)
	}
}

func TestTotalIndependentOfLineOrder(t *testing.T) {
	cat := testCatalog()
	a := newTestDraft()
	mustAdd(t, a, cat, "Pin iPhone 11", 2, 450000)
	mustAdd(t, a, cat, "Màn hình Samsung A52", 1, 1200000)

	b := newTestDraft()
	mustAdd(t, b, cat, "Màn hình Samsung A52", 1, 1200000)
	mustAdd(t, b, cat, "Pin iPhone 11", 2, 450000)

	if a.Total() != b.Total() {
		t.Errorf("total depends on line order: %v vs %v", a.Total(), b.Total())
	}
}

func TestRemainingClampsAtZero(t *testing.T) {
	d := newTestDraft()
	d.Order.LaborCost = 100000
	d.Order.DepositAmount = 250000
	if got := d.Remaining(); got != 0 {
		t.Errorf("Remaining = %v, want 0 when deposit exceeds total", got)
	}
}

func TestAddMaterialValidation(t *testing.T) {
	cases := []struct {
		name    string
		matName string
		qty     float64
		wantErr error
	}{
		{"empty name", "", 1, ErrMaterialName},
		{"blank name", "   ", 1, ErrMaterialName},
		{"zero quantity", "Pin iPhone 11", 0, ErrQuantity},
		{"negative quantity", "Pin iPhone 11", -2, ErrQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDraft()
			_, err := d.AddMaterial(testCatalog(), tc.matName, tc.qty, 1000, false)
			if err != tc.wantErr {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
			if len(d.Order.MaterialsUsed) != 0 {
				t.Errorf("draft mutated on validation failure")
			}
		})
	}
}

func TestAddMaterialShortageConfirmation(t *testing.T) {
	d := newTestDraft()
	cat := testCatalog()

	// Stock 2, ask for 3: needs confirmation, nothing applied yet.
	conf, err := d.AddMaterial(cat, "màn hình samsung a52", 3, 1200000, false)
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if conf == nil || conf.Kind != ConfirmShortage {
		t.Fatalf("confirmation = %+v, want kind %q", conf, ConfirmShortage)
	}
	if conf.Shortage != 1 || conf.InStock != 2 || conf.Needed != 3 {
		t.Errorf("confirmation detail = %+v, want shortage 1, in stock 2, needed 3", conf)
	}
	if len(d.Order.MaterialsUsed) != 0 {
		t.Fatalf("line applied without confirmation")
	}

	// User proceeds: the line is tagged with the deficit.
	conf, err = d.AddMaterial(cat, "màn hình samsung a52", 3, 1200000, true)
	if err != nil || conf != nil {
		t.Fatalf("confirmed add: conf=%+v err=%v", conf, err)
	}
	line := d.Order.MaterialsUsed[0]
	if line.Shortage != 1 || line.MaterialID != "m2" {
		t.Errorf("line = %+v, want shortage 1 on m2", line)
	}
}

func TestAddMaterialAccountsForDraftUsage(t *testing.T) {
	d := newTestDraft()
	cat := testCatalog()
	mustAdd(t, d, cat, "Pin iPhone 11", 8, 450000)

	// 8 of 10 already claimed by the draft; asking 5 more leaves a deficit of 3.
	conf, err := d.AddMaterial(cat, "Pin iPhone 11", 5, 450000, false)
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if conf == nil || conf.Shortage != 3 {
		t.Fatalf("confirmation = %+v, want shortage 3", conf)
	}
}

func TestAddMaterialOverClaimedStock(t *testing.T) {
	// Earlier confirmed lines already exceed the stock (12 of 10); a further
	// line of 3 is short by its quantity plus the outstanding deficit of 2.
	d := newTestDraft()
	cat := testCatalog()
	if _, err := d.AddMaterial(cat, "Pin iPhone 11", 12, 450000, true); err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}

	conf, err := d.AddMaterial(cat, "Pin iPhone 11", 3, 450000, false)
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if conf == nil || conf.Shortage != 5 {
		t.Fatalf("confirmation = %+v, want shortage 5", conf)
	}
	if conf.InStock != 0 {
		t.Errorf("confirmation in stock = %v, want 0", conf.InStock)
	}

	if _, err := d.AddMaterial(cat, "Pin iPhone 11", 3, 450000, true); err != nil {
		t.Fatalf("confirmed add: %v", err)
	}
	line := d.Order.MaterialsUsed[1]
	if line.Shortage != 5 {
		t.Errorf("line shortage = %v, want 5", line.Shortage)
	}
}

func TestAddUnknownMaterial(t *testing.T) {
	d := newTestDraft()
	conf, err := d.AddMaterial(testCatalog(), "IC nguồn iPhone 13", 2, 350000, false)
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if conf == nil || conf.Kind != ConfirmNewMaterial || conf.Shortage != 2 {
		t.Fatalf("confirmation = %+v, want new material with shortage 2", conf)
	}

	if _, err := d.AddMaterial(testCatalog(), "IC nguồn iPhone 13", 2, 350000, true); err != nil {
		t.Fatalf("confirmed add: %v", err)
	}
	line := d.Order.MaterialsUsed[0]
	if !line.IsNew || line.Shortage != 2 || line.InStock != 0 {
		t.Errorf("line = %+v, want is_new with shortage 2 and in_stock 0", line)
	}
}

func TestAddOutsourcingZeroMargin(t *testing.T) {
	d := newTestDraft()
	conf, err := d.AddOutsourcing("Khắc laser vỏ máy", 1, 0, 80000, false)
	if err != nil {
		t.Fatalf("AddOutsourcing: %v", err)
	}
	if conf == nil || conf.Kind != ConfirmZeroMargin {
		t.Fatalf("confirmation = %+v, want zero-margin warning", conf)
	}
	if len(d.Order.OutsourcingItems) != 0 {
		t.Fatalf("line applied without confirmation")
	}

	if _, err := d.AddOutsourcing("Khắc laser vỏ máy", 1, 0, 80000, true); err != nil {
		t.Fatalf("confirmed add: %v", err)
	}
	if got := d.Order.OutsourcingItems[0].Total; got != 80000 {
		t.Errorf("line total = %v, want 80000", got)
	}
}

func TestAddOutsourcingValidation(t *testing.T) {
	d := newTestDraft()
	if _, err := d.AddOutsourcing("  ", 1, 1000, 2000, false); err != ErrDescription {
		t.Errorf("empty description: err = %v, want %v", err, ErrDescription)
	}
	if _, err := d.AddOutsourcing("Ép kính", 0, 1000, 2000, false); err != ErrQuantity {
		t.Errorf("zero quantity: err = %v, want %v", err, ErrQuantity)
	}
}

func TestRemoveLines(t *testing.T) {
	d := newTestDraft()
	cat := testCatalog()
	mustAdd(t, d, cat, "Pin iPhone 11", 1, 450000)
	mustAdd(t, d, cat, "Cáp sạc Type-C", 1, 50000)

	if err := d.RemoveMaterial(5); err != ErrIndexOutOfRange {
		t.Errorf("bad index: err = %v, want %v", err, ErrIndexOutOfRange)
	}
	if err := d.RemoveMaterial(0); err != nil {
		t.Fatalf("RemoveMaterial: %v", err)
	}
	if len(d.Order.MaterialsUsed) != 1 || d.Order.MaterialsUsed[0].MaterialID != "m3" {
		t.Errorf("wrong line removed: %+v", d.Order.MaterialsUsed)
	}
}

func terminalDraft() *Draft {
	d := newTestDraft()
	d.Order.Status = models.StatusReturned
	d.Order.PaymentStatus = models.PaymentPaid
	d.Order.MaterialsDeducted = true
	return d
}

func TestTerminalOrderLocked(t *testing.T) {
	d := terminalDraft()
	if _, err := d.AddMaterial(testCatalog(), "Pin iPhone 11", 1, 450000, true); err != ErrTerminal {
		t.Errorf("AddMaterial on terminal order: err = %v, want %v", err, ErrTerminal)
	}
	if _, err := d.AddOutsourcing("Ép kính", 1, 1000, 2000, true); err != ErrTerminal {
		t.Errorf("AddOutsourcing on terminal order: err = %v, want %v", err, ErrTerminal)
	}
	if err := d.RemoveMaterial(0); err != ErrTerminal {
		t.Errorf("RemoveMaterial on terminal order: err = %v, want %v", err, ErrTerminal)
	}
	if err := d.RemoveOutsourcing(0); err != ErrTerminal {
		t.Errorf("RemoveOutsourcing on terminal order: err = %v, want %v", err, ErrTerminal)
	}
}

func TestTerminalRequiresAllThree(t *testing.T) {
	cases := []struct {
		name     string
		status   string
		payment  string
		deducted bool
		want     bool
	}{
		{"returned paid deducted", models.StatusReturned, models.PaymentPaid, true, true},
		{"returned paid not deducted", models.StatusReturned, models.PaymentPaid, false, false},
		{"returned unpaid deducted", models.StatusReturned, models.PaymentUnpaid, true, false},
		{"repairing paid deducted", models.StatusRepairing, models.PaymentPaid, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &models.RepairOrder{Status: tc.status, PaymentStatus: tc.payment, MaterialsDeducted: tc.deducted}
			if got := o.Terminal(); got != tc.want {
				t.Errorf("Terminal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func validDraft() *Draft {
	d := newTestDraft()
	d.Order.CustomerName = "Nguyễn Văn A"
	d.Order.CustomerPhone = "0901234567"
	d.Order.IssueDescription = "Không lên nguồn"
	d.Order.LaborCost = 100000
	return d
}

func TestValidate(t *testing.T) {
	actor := Actor{UserID: 1, Name: "admin"}

	cases := []struct {
		name    string
		mutate  func(*Draft)
		actor   Actor
		wantErr string
	}{
		{"ok", func(d *Draft) {}, actor, ""},
		{"no actor", func(d *Draft) {}, Actor{}, "đăng nhập"},
		{"missing customer name", func(d *Draft) { d.Order.CustomerName = "  " }, actor, "tên khách hàng"},
		{"missing phone", func(d *Draft) { d.Order.CustomerPhone = "" }, actor, "số điện thoại"},
		{"missing issue", func(d *Draft) { d.Order.IssueDescription = "" }, actor, "mô tả lỗi"},
		{"zero total", func(d *Draft) { d.Order.LaborCost = 0 }, actor, "lớn hơn 0"},
		{"paid without method", func(d *Draft) { d.Order.PaymentStatus = models.PaymentPaid }, actor, "phương thức thanh toán"},
		{"deposit without method", func(d *Draft) { d.Order.DepositAmount = 50000 }, actor, "phương thức thanh toán"},
		{"partial too low", func(d *Draft) {
			d.Order.PaymentStatus = models.PaymentPartial
			d.Order.PaymentMethod = models.MethodCash
			d.Order.PartialPaymentAmount = 0
		}, actor, "một phần"},
		{"partial equals total", func(d *Draft) {
			d.Order.PaymentStatus = models.PaymentPartial
			d.Order.PaymentMethod = models.MethodCash
			d.Order.PartialPaymentAmount = 100000
		}, actor, "một phần"},
		{"partial in range", func(d *Draft) {
			d.Order.PaymentStatus = models.PaymentPartial
			d.Order.PaymentMethod = models.MethodTransfer
			d.Order.PartialPaymentAmount = 60000
		}, actor, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(d)
			err := d.Validate(tc.actor)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate: %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestNeedsDeductionConfirmation(t *testing.T) {
	d := validDraft()
	d.Order.Status = models.StatusReturned
	if !d.NeedsDeductionConfirmation() {
		t.Error("returned + not deducted should gate on confirmation")
	}
	d.Order.MaterialsDeducted = true
	if d.NeedsDeductionConfirmation() {
		t.Error("already deducted order should not gate again")
	}
	d.Order.MaterialsDeducted = false
	d.Order.Status = models.StatusRepairing
	if d.NeedsDeductionConfirmation() {
		t.Error("non-returned status should not gate")
	}
}

func TestEditDraftCopiesLines(t *testing.T) {
	orig := &models.RepairOrder{
		ID:            "SC-20260101-0001",
		Status:        models.StatusRepairing,
		MaterialsUsed: []models.MaterialUsed{{MaterialID: "m1", MaterialName: "Pin iPhone 11", Quantity: 1, Price: 450000}},
	}
	d := EditDraft(orig)
	if err := d.RemoveMaterial(0); err != nil {
		t.Fatalf("RemoveMaterial: %v", err)
	}
	if len(orig.MaterialsUsed) != 1 {
		t.Error("editing the draft mutated the original order")
	}
}

func TestSummarizeLabels(t *testing.T) {
	d := validDraft()
	s := d.Summarize(false)
	if s.SubmitLabel != "Tạo đơn" {
		t.Errorf("new draft label = %q", s.SubmitLabel)
	}
	s = d.Summarize(true)
	if s.SubmitLabel != "Cập nhật đơn" {
		t.Errorf("editing label = %q", s.SubmitLabel)
	}

	td := terminalDraft()
	s = td.Summarize(true)
	if !s.Terminal || s.SubmitLabel != "Đã khóa" {
		t.Errorf("terminal summary = %+v", s)
	}
}
