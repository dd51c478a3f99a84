// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Address struct {
	Street  string `json:"street,omitempty" gorm:"size:255"`
	City    string `json:"city,omitempty" gorm:"size:100"`
	State   string `json:"state,omitempty" gorm:"size:100"`
	ZipCode string `json:"zip_code,omitempty" gorm:"size:20"`
	Country string `json:"country,omitempty" gorm:"size:100"`
}

type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'user'"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	Phone        string     `json:"phone,omitempty" gorm:"size:30"`
	Avatar       string     `json:"avatar,omitempty" gorm:"size:500"`
	Address      Address    `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Orders  []Order  `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
