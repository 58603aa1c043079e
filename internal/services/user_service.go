package services

import (
	"context"
	"errors"
	"strconv"

	"repair-backend/internal/auth"
	"repair-backend/internal/cache"
	"repair-backend/internal/models"
	"repair-backend/internal/repositories"
)

var ErrTOTPRequired = errors.New("two-factor code required")

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
	Audit      *AuditService
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager, audit *AuditService) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
		Audit:      audit,
	}
}

func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest, actorID int, actorName string) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("name, email, and password are required")
	}
	existing, _ := s.Repo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, errors.New("user with this email already exists")
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionCreate,
		Entity:     "user",
		EntityID:   strconv.Itoa(user.ID),
		EntityName: user.Name,
	})
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest, actorID int, actorName string) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	if req.Role != "" {
		user.Role = req.Role
	}
	user.PasswordHash = ""
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionUpdate,
		Entity:     "user",
		EntityID:   strconv.Itoa(id),
		EntityName: user.Name,
	})
	return user, nil
}

// SetActive suspends or reactivates a user. Suspended users fail the
// per-request check in the auth middleware even with a valid token.
func (s *UserService) SetActive(ctx context.Context, id int, active bool, actorID int, actorName string) error {
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actorID,
		UserName: actorName,
		Action:   models.ActionUpdate,
		Entity:   "user",
		EntityID: strconv.Itoa(id),
		Metadata: map[string]any{"is_active": active},
	})
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int, actorID int, actorName string) error {
	if id == actorID {
		return errors.New("cannot delete your own account")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:   actorID,
		UserName: actorName,
		Action:   models.ActionDelete,
		Entity:   "user",
		EntityID: strconv.Itoa(id),
	})
	return nil
}

// Signup creates the first account. Open only while the users table is empty;
// after that, accounts are created by an admin.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("name, email, and password are required")
	}
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return nil, errors.New("signup is closed, ask an administrator for an account")
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         "admin", // First account runs the shop
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates and returns either a full JWT or, when the account has
// 2FA enabled, a short-lived temp token for the code verification step.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *models.LoginStep1Response, error) {
	if req.Email == "" || req.Password == "" {
		return nil, nil, errors.New("email and password are required")
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, errors.New("invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, errors.New("account is suspended")
	}

	// Password verification is the expensive part; a recent identical login
	// short-circuits bcrypt via the credential cache.
	if cachedID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); !ok || int(cachedID) != user.ID {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			return nil, nil, errors.New("invalid email or password")
		}
		cache.CacheAuth(ctx, req.Email, req.Password, int64(user.ID))
	}

	if user.TOTPEnabled {
		tempToken, err := s.JWTManager.GenerateTempToken(user)
		if err != nil {
			return nil, nil, err
		}
		return nil, &models.LoginStep1Response{
			Requires2FA: true,
			TempToken:   tempToken,
			Message:     "Enter the code from your authenticator app",
		}, nil
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil, nil
}

