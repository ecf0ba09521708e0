package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User owns a folder tree plus the zettels and files inside it.
type User struct {
	ID        uint   `json:"id" gorm:"primarykey"`
	Username  string `json:"username" gorm:"not null;uniqueIndex"`
	Email     string `json:"email" gorm:"not null;uniqueIndex"`
	Password  string `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
