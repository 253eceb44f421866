// Package model defines database models
package model

type User struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// Stored lowercase. The unique index is what actually wins a race
	// between two registrations with the same address
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	// Unix millisecond timestamp
	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"created_at"`

	Images []Image `gorm:"foreignKey:UserID" json:"-"`
}
