package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"repair-backend/internal/models"
)

func TestSaveFinalMatchesCustomerByName(t *testing.T) {
	pool := testPool(t)
	orderRepo := NewRepairOrderRepository(pool)
	custRepo := NewCustomerRepository(pool)
	ctx := context.Background()
	userID := testUser(t, ctx, pool)

	// Customer first recorded without a phone, e.g. a walk-in.
	name := fmt.Sprintf("Nguyễn Văn Thử %d", time.Now().UnixNano())
	existing := &models.Customer{Name: name}
	if err := custRepo.Create(ctx, existing); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM customers WHERE LOWER(name)=LOWER($1)", name)
	})

	order := &models.RepairOrder{
		ID:               fmt.Sprintf("SC-TEST-%d", time.Now().UnixNano()),
		CreationDate:     time.Now(),
		CustomerName:     name,
		CustomerPhone:    "0901234567",
		DeviceName:       "iPhone 11",
		IssueDescription: "Không lên nguồn",
		Status:           models.StatusIntake,
		PaymentStatus:    models.PaymentUnpaid,
		CreatedByUserID:  userID,
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM repair_orders WHERE id=$1", order.ID)
	})

	if err := orderRepo.SaveFinal(ctx, order, false, nil, true); err != nil {
		t.Fatalf("SaveFinal: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM customers WHERE LOWER(name)=LOWER($1)", name).Scan(&count); err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if count != 1 {
		t.Errorf("customer rows = %d, want 1 (matched by name, not duplicated)", count)
	}

	got, err := custRepo.Get(ctx, existing.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Phone != order.CustomerPhone {
		t.Errorf("phone = %q, want %q filled in from the order", got.Phone, order.CustomerPhone)
	}
}

func TestSaveFinalMatchesCustomerByPhoneFirst(t *testing.T) {
	pool := testPool(t)
	orderRepo := NewRepairOrderRepository(pool)
	custRepo := NewCustomerRepository(pool)
	ctx := context.Background()
	userID := testUser(t, ctx, pool)

	phone := fmt.Sprintf("09%08d", time.Now().UnixNano()%100000000)
	byPhone := &models.Customer{Name: "Trần Thị Cũ", Phone: phone}
	if err := custRepo.Create(ctx, byPhone); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM customers WHERE id=$1", byPhone.ID)
	})

	order := &models.RepairOrder{
		ID:               fmt.Sprintf("SC-TEST-%d", time.Now().UnixNano()),
		CreationDate:     time.Now(),
		CustomerName:     "Trần Thị Mới",
		CustomerPhone:    phone,
		IssueDescription: "Vỡ màn hình",
		Status:           models.StatusIntake,
		PaymentStatus:    models.PaymentUnpaid,
		CreatedByUserID:  userID,
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM repair_orders WHERE id=$1", order.ID)
		pool.Exec(context.Background(), "DELETE FROM customers WHERE name=$1", order.CustomerName)
	})

	if err := orderRepo.SaveFinal(ctx, order, false, nil, true); err != nil {
		t.Fatalf("SaveFinal: %v", err)
	}

	got, err := custRepo.Get(ctx, byPhone.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Name != order.CustomerName {
		t.Errorf("name = %q, want %q (phone match takes priority and updates the record)", got.Name, order.CustomerName)
	}
}
