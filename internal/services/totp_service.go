package services

import (
	"context"
	"errors"

	"repair-backend/internal/auth"
	"repair-backend/internal/models"
	"repair-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "PinCorp"

var (
	ErrNoTOTPSecret    = errors.New("2FA setup has not been started")
	ErrInvalidTOTPCode = errors.New("invalid verification code")
)

type TOTPService struct {
	UserRepo   *repositories.UserRepository
	JWTManager *auth.JWTManager
	Audit      *AuditService
}

func NewTOTPService(userRepo *repositories.UserRepository, jwtManager *auth.JWTManager, audit *AuditService) *TOTPService {
	return &TOTPService{UserRepo: userRepo, JWTManager: jwtManager, Audit: audit}
}

// GenerateSetup creates a new TOTP secret for the user. The secret is stored
// but 2FA stays off until a code is verified.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}
	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		Issuer:      totpIssuer,
		AccountName: user.Email,
		OTPAuthURL:  key.URL(),
	}, nil
}

// VerifyAndEnable checks the first code against the pending secret and turns
// 2FA on.
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	secret, err := s.UserRepo.GetTOTPSecret(ctx, userID)
	if err != nil {
		return err
	}
	if secret == "" {
		return ErrNoTOTPSecret
	}
	if !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	if err := s.UserRepo.EnableTOTP(ctx, userID); err != nil {
		return err
	}
	user, err := s.UserRepo.Get(ctx, userID)
	if err == nil {
		s.Audit.Log(ctx, &models.AuditLog{
			UserID:     userID,
			UserName:   user.Name,
			Action:     models.ActionUpdate,
			Entity:     "user",
			EntityID:   user.Email,
			EntityName: user.Name,
			Metadata:   map[string]any{"totp_enabled": true},
		})
	}
	return nil
}

// VerifyLogin completes the second login step: a valid temp token plus a
// valid code yields the full session token.
func (s *TOTPService) VerifyLogin(ctx context.Context, tempToken, code string) (*models.AuthResponse, error) {
	claims, err := s.JWTManager.ValidateTempToken(tempToken)
	if err != nil {
		return nil, errors.New("invalid or expired temporary token")
	}
	user, err := s.UserRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New("account is suspended")
	}
	secret, err := s.UserRepo.GetTOTPSecret(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if secret == "" || !totp.Validate(code, secret) {
		return nil, ErrInvalidTOTPCode
	}
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Disable turns 2FA off after re-verifying the password and a current code.
func (s *TOTPService) Disable(ctx context.Context, userID int, password, code string) error {
	user, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return errors.New("invalid password")
	}
	secret, err := s.UserRepo.GetTOTPSecret(ctx, userID)
	if err != nil {
		return err
	}
	if secret == "" || !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	if err := s.UserRepo.DisableTOTP(ctx, userID); err != nil {
		return err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     userID,
		UserName:   user.Name,
		Action:     models.ActionUpdate,
		Entity:     "user",
		EntityID:   user.Email,
		EntityName: user.Name,
		Metadata:   map[string]any{"totp_enabled": false},
	})
	return nil
}

// Status reports whether 2FA is on for the user.
func (s *TOTPService) Status(ctx context.Context, userID int) (*models.User2FAStatus, error) {
	user, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.User2FAStatus{Enabled: user.TOTPEnabled}, nil
}
