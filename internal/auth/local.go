package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/models"
)

// LocalProvider authenticates manager users against the users table.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate checks username and password and records the login.
// The returned user has its Attributes loaded.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Preload("Attributes").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if user.Attributes.Blocked {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if user.Attributes.ID != 0 {
		now := time.Now()

		err = p.db.WithContext(ctx).Model(&user.Attributes).Updates(map[string]any{
			"logincount": gorm.Expr("logincount + 1"),
			"lastlogin":  now,
		}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to record login: %w", err)
		}

		user.Attributes.LoginCount++
		user.Attributes.LastLogin = &now
	}

	return &user, nil
}

// CreateUser creates a manager user with its attributes row.
func (p *LocalProvider) CreateUser(ctx context.Context, username, password, fullname, email string, roleID uint) (*models.User, error) {
	var existing models.User

	err := p.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserNameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Username: username,
		Password: models.HashPassword(password),
		Attributes: models.UserAttributes{
			Fullname: fullname,
			Email:    email,
			Role:     roleID,
		},
	}

	if err = p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ChangePassword replaces the password after checking the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.ResetPassword(ctx, userID, newPassword)
}

// ResetPassword sets a new password without checking the old one.
func (p *LocalProvider) ResetPassword(ctx context.Context, userID uint64, newPassword string) error {
	result := p.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", models.HashPassword(newPassword))
	if result.Error != nil {
		return fmt.Errorf("failed to reset password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetBlocked blocks or unblocks a user.
func (p *LocalProvider) SetBlocked(ctx context.Context, userID uint64, blocked bool) error {
	result := p.db.WithContext(ctx).Model(&models.UserAttributes{}).
		Where("internal_key = ?", userID).
		Update("blocked", blocked)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", userID, result.Error)
	}

	// mysql reports zero affected rows when the value did not change
	if result.RowsAffected == 0 {
		var count int64
		if err := p.db.WithContext(ctx).Model(&models.UserAttributes{}).
			Where("internal_key = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to get user %d: %w", userID, err)
		}

		if count == 0 {
			return ErrUserNotFound
		}
	}

	return nil
}

// GetUserByID retrieves a user and its attributes by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Preload("Attributes").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}
