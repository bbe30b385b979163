package models

import "time"

// Role is the authorization level attached to a user. It is checked by the
// transport layer against the roles a route requires.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// User represents a registered user of the selector.
type User struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"uniqueIndex;type:varchar(50);not null"`
	Email            string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password         string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	BirthDate        time.Time `json:"birth_date"`
	RegistrationDate time.Time `json:"registration_date"`
	Role             Role      `json:"role" gorm:"type:varchar(20);not null"`
}
