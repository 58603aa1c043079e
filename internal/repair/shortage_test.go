package repair

import (
	"testing"

	"repair-backend/internal/models"
)

func TestShortagesEmptyDraft(t *testing.T) {
	d := newTestDraft()
	if got := d.Shortages(testCatalog()); len(got) != 0 {
		t.Errorf("Shortages = %+v, want none", got)
	}
}

func TestShortagesCoveredLines(t *testing.T) {
	d := newTestDraft()
	mustAdd(t, d, testCatalog(), "Pin iPhone 11", 4, 450000)
	if got := d.Shortages(testCatalog()); len(got) != 0 {
		t.Errorf("Shortages = %+v, want none for covered line", got)
	}
}

func TestShortagesSharedStockAcrossLines(t *testing.T) {
	// Two lines of the same material: 8 + 5 against stock 10. The first line
	// is covered, the second is short by 3.
	d := newTestDraft()
	cat := testCatalog()
	mustAdd(t, d, cat, "Pin iPhone 11", 8, 450000)
	if _, err := d.AddMaterial(cat, "Pin iPhone 11", 5, 450000, true); err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}

	got := d.Shortages(cat)
	if len(got) != 1 {
		t.Fatalf("Shortages = %+v, want exactly one", got)
	}
	s := got[0]
	if s.Shortage != 3 || s.Needed != 5 || s.InStock != 2 || s.IsNew {
		t.Errorf("shortage = %+v, want needed 5, in stock 2, shortage 3", s)
	}
}

func TestShortagesOverClaimedStock(t *testing.T) {
	// The first line alone over-claims the stock (12 against 10). Each later
	// line of the same material then carries its full quantity plus the
	// outstanding deficit: 3 - (10 - 12) = 5.
	d := newTestDraft()
	cat := testCatalog()
	if _, err := d.AddMaterial(cat, "Pin iPhone 11", 12, 450000, true); err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if _, err := d.AddMaterial(cat, "Pin iPhone 11", 3, 450000, true); err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}

	got := d.Shortages(cat)
	if len(got) != 2 {
		t.Fatalf("Shortages = %+v, want two", got)
	}
	if got[0].Shortage != 2 || got[0].InStock != 10 {
		t.Errorf("first line = %+v, want shortage 2, in stock 10", got[0])
	}
	if got[1].Shortage != 5 || got[1].InStock != 0 || got[1].Needed != 3 {
		t.Errorf("second line = %+v, want shortage 5, in stock 0, needed 3", got[1])
	}
}

func TestShortagesUnknownMaterial(t *testing.T) {
	d := newTestDraft()
	d.Order.MaterialsUsed = append(d.Order.MaterialsUsed, models.MaterialUsed{
		MaterialID:   "new-1",
		MaterialName: "IC nguồn iPhone 13",
		Quantity:     2,
		Price:        350000,
		IsNew:        true,
	})

	got := d.Shortages(testCatalog())
	if len(got) != 1 {
		t.Fatalf("Shortages = %+v, want one", got)
	}
	if !got[0].IsNew || got[0].Shortage != 2 || got[0].InStock != 0 {
		t.Errorf("shortage = %+v, want new material short by 2", got[0])
	}
}

func TestShortagesRecomputedFromCurrentCatalog(t *testing.T) {
	// A line added while stock was short stops being reported once the
	// catalog has been restocked: shortages are derived, not stored.
	d := newTestDraft()
	cat := testCatalog()
	if _, err := d.AddMaterial(cat, "Màn hình Samsung A52", 3, 1200000, true); err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if got := d.Shortages(cat); len(got) != 1 {
		t.Fatalf("Shortages before restock = %+v, want one", got)
	}

	restocked := Catalog{{ID: "m2", Name: "Màn hình Samsung A52", Stock: 5}}
	if got := d.Shortages(restocked); len(got) != 0 {
		t.Errorf("Shortages after restock = %+v, want none", got)
	}
}

func TestCatalogFindByNameCaseInsensitive(t *testing.T) {
	cat := testCatalog()
	m, ok := cat.FindByName("  pin iphone 11 ")
	if !ok || m.ID != "m1" {
		t.Errorf("FindByName = %+v %v, want m1", m, ok)
	}
	if _, ok := cat.FindByName("không tồn tại"); ok {
		t.Error("FindByName matched a missing material")
	}
}
