package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string     `gorm:"not null"                 json:"name"`
	Email             string     `gorm:"uniqueIndex;not null"     json:"email"`
	Username          string     `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash      string     `gorm:"not null"                 json:"-"`
	Role              string     `gorm:"not null;default:user"    json:"role"`
	Profile           string     `json:"profile"`
	About             string     `json:"about"`
	ResetPasswordLink string     `gorm:"default:''"               json:"-"`
	Photo             []byte     `gorm:"type:bytes"               json:"-"`
	PhotoType         string     `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Public is the sanitized projection returned by the auth endpoints.
// Credential material and the reset link never leave the server.
func (u *User) Public() map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Role,
	}
}

type Blog struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string     `gorm:"not null"                 json:"title"`
	Slug       string     `gorm:"uniqueIndex;not null"     json:"slug"`
	Body       string     `gorm:"not null"                 json:"body"`
	Excerpt    string     `json:"excerpt"`
	MetaTitle  string     `json:"mtitle"`
	MetaDesc   string     `json:"mdesc"`
	Photo      []byte     `gorm:"type:bytes"               json:"-"`
	PhotoType  string     `json:"-"`
	PostedByID uint       `gorm:"index;not null"           json:"posted_by_id"`
	PostedBy   User       `gorm:"foreignKey:PostedByID"    json:"posted_by"`
	Categories []Category `gorm:"many2many:blog_categories" json:"categories"`
	Tags       []Tag      `gorm:"many2many:blog_tags"       json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
	Slug string `gorm:"uniqueIndex;not null"     json:"slug"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
	Slug string `gorm:"uniqueIndex;not null"     json:"slug"`
}
