package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"repair-backend/internal/cache"
	"repair-backend/internal/models"
	"repair-backend/internal/repositories"
)

type CustomerService struct {
	Repo  *repositories.CustomerRepository
	Audit *AuditService
}

func NewCustomerService(repo *repositories.CustomerRepository, audit *AuditService) *CustomerService {
	return &CustomerService{Repo: repo, Audit: audit}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest, actorID int, actorName string) (*models.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("customer name is required")
	}
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if existing, err := s.Repo.FindByNameOrPhone(ctx, name, phone); err == nil && existing != nil {
		return nil, errors.New("customer already exists: " + existing.Name)
	}
	customer := &models.Customer{
		Name:    name,
		Phone:   phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.Repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	cache.InvalidateCustomerCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionCreate,
		Entity:     "customer",
		EntityID:   strconv.Itoa(customer.ID),
		EntityName: customer.Name,
	})
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.Repo.Get(ctx, id)
}

// ListCustomers serves from the Redis cache when warm.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	if data, ok := cache.GetCached(ctx, cache.CustomersListKey); ok {
		var customers []*models.Customer
		if err := json.Unmarshal(data, &customers); err == nil {
			return customers, nil
		}
	}
	customers, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(customers); err == nil {
		cache.SetCached(ctx, cache.CustomersListKey, data, 5*time.Minute)
	}
	return customers, nil
}

func (s *CustomerService) SearchCustomers(ctx context.Context, query string) ([]*models.Customer, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListCustomers(ctx)
	}
	return s.Repo.Search(ctx, query)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.UpdateCustomerRequest, actorID int, actorName string) (*models.Customer, error) {
	customer, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	if err := s.Repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	cache.InvalidateCustomerCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionUpdate,
		Entity:     "customer",
		EntityID:   strconv.Itoa(id),
		EntityName: customer.Name,
	})
	return customer, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int, actorID int, actorName string) error {
	customer, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateCustomerCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionDelete,
		Entity:     "customer",
		EntityID:   strconv.Itoa(id),
		EntityName: customer.Name,
	})
	return nil
}
