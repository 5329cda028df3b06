package models

import (
	"time"
)

// User defines the shared portal account based on the 'users' table. Account
// creation and login are owned by the portal's identity service; this service
// reads the table for names, emails and department labels.
type User struct {
	ID         int64     `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Email      string    `json:"email" db:"email" example:"user@alumni.edu.tr"`            // User's email address
	Password   string    `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	FirstName  string    `json:"firstName" db:"first_name" example:"John"`                 // User's first name
	LastName   string    `json:"lastName" db:"last_name" example:"Doe"`                    // User's last name
	RoleType   RoleType  `json:"roleType" db:"role_type" example:"STUDENT"`                // User's role (ALUMNI, STUDENT or ADMIN)
	Department string    `json:"department" db:"department" example:"Computer Science"`    // Department label from the profile record
	IsActive   bool      `json:"isActive" db:"is_active" example:"true"`                   // Whether the user account is active
	CreatedAt  time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"` // Timestamp when the user was last updated
}

// FullName returns the display name used in dashboards and notifications.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
