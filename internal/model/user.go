package model

import (
	"strings"

	"gorm.io/gorm"
)

type Address struct {
	Street  string `gorm:"size:200" json:"street,omitempty"`
	City    string `gorm:"size:100" json:"city,omitempty"`
	State   string `gorm:"size:100" json:"state,omitempty"`
	ZipCode string `gorm:"size:20" json:"zipCode,omitempty"`
	Country string `gorm:"size:100" json:"country,omitempty"`
}

type User struct {
	Base
	Name        string     `gorm:"size:50;not null" json:"name"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"`
	Role        Role       `gorm:"size:16;index;not null;default:user" json:"role"`
	Status      UserStatus `gorm:"size:16;index;not null;default:active" json:"status"`
	IsDeleted   bool       `gorm:"index;not null;default:false" json:"isDeleted"`
	ProfileImg  string     `gorm:"size:500" json:"profileImg,omitempty"`
	Phone       string     `gorm:"size:32" json:"phone,omitempty"`
	DateOfBirth string     `gorm:"size:32" json:"dateOfBirth,omitempty"`
	Address     Address    `gorm:"embedded;embeddedPrefix:address_" json:"address"`
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
