package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/voxeterna/blog-api/internal/models"
)

// UserByEmail folds the email to lower case before matching; emails are
// stored case-folded as well.
func (r *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UserByResetLink matches the stored reset challenge verbatim. A token that
// was already redeemed or superseded no longer matches any row.
func (r *Store) UserByResetLink(ctx context.Context, link string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("reset_password_link = ?", link).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUser relies on the unique indexes on email and username; a
// constraint violation surfaces as the driver error.
func (r *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Store) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

// SetResetLink stores the outstanding reset challenge. Writing a new value
// silently invalidates any earlier one.
func (r *Store) SetResetLink(ctx context.Context, userID uint, link string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("reset_password_link", link).Error
}

// UpdatePassword swaps the credential hash and clears the reset challenge as
// a single record save.
func (r *Store) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash":       passwordHash,
			"reset_password_link": "",
		}).Error
}

// BlogsByUser returns the user's most recent posts for the public profile.
func (r *Store) BlogsByUser(ctx context.Context, userID uint, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.DB.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("PostedBy", selectUserSummary).
		Where("posted_by_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "username", "profile")
}
