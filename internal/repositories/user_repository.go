package repositories

import (
	"context"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = "technician" // Default role
	}
	if !u.IsActive {
		u.IsActive = true // Default to active
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO users(name, email, phone, password_hash, role, is_active)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), password_hash, role, is_active, totp_enabled, created_at, updated_at
         FROM users WHERE id=$1`, id)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt)
	return &user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), password_hash, role, is_active, totp_enabled, created_at, updated_at
         FROM users WHERE email=$1`, email)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt)
	return &user, err
}

// List returns all users
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), role, is_active, totp_enabled, created_at, updated_at
         FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role,
			&user.IsActive, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	// If password is empty, don't update it (keep existing password)
	if u.PasswordHash != "" {
		_, err := r.DB.Exec(ctx,
			`UPDATE users SET name=$1, email=$2, phone=$3, password_hash=$4, role=$5, updated_at=CURRENT_TIMESTAMP
			 WHERE id=$6`,
			u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.ID)
		return err
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET name=$1, email=$2, phone=$3, role=$4, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$5`,
		u.Name, u.Email, u.Phone, u.Role, u.ID)
	return err
}

// SetActive toggles the suspended/active flag
func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET is_active=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, active, id)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

// GetTOTPSecret returns the stored TOTP secret (empty when 2FA never set up)
func (r *UserRepository) GetTOTPSecret(ctx context.Context, id int) (string, error) {
	var secret string
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(totp_secret, '') FROM users WHERE id=$1`, id).Scan(&secret)
	return secret, err
}

// SetTOTPSecret stores a pending TOTP secret (not yet enabled)
func (r *UserRepository) SetTOTPSecret(ctx context.Context, id int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret=$1, totp_enabled=FALSE, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, secret, id)
	return err
}

// EnableTOTP marks 2FA as verified and active
func (r *UserRepository) EnableTOTP(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_enabled=TRUE, totp_enabled_at=NOW(), updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	return err
}

// DisableTOTP clears the secret and disables 2FA
func (r *UserRepository) DisableTOTP(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret=NULL, totp_enabled=FALSE, totp_enabled_at=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	return err
}
