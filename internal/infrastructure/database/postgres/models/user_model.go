package models

import (
	"time"
)

// UserModel represents the database model for User
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password;type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// PasswordResetModel is the password_resets row. Queries against it go
// through sqlx; the model only describes the schema for migrations.
type PasswordResetModel struct {
	Email     string    `gorm:"type:varchar(255);not null;index"`
	Token     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (PasswordResetModel) TableName() string {
	return "password_resets"
}
