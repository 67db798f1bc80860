package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered customer of the store.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(1000)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(100)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Country   string    `json:"country" gorm:"type:varchar(100)"`
	State     string    `json:"state" gorm:"type:varchar(100)"`
	City      string    `json:"city" gorm:"type:varchar(100)"`
	Contact   string    `json:"contact" gorm:"type:varchar(100)"`
	Address   string    `json:"address" gorm:"type:varchar(100)"`
	Zipcode   string    `json:"zipcode" gorm:"type:varchar(100)"`
	Profile   string    `json:"profile" gorm:"type:varchar(250);not null;default:profile.jpg"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Profile == "" {
		u.Profile = "profile.jpg"
	}
	return nil
}
