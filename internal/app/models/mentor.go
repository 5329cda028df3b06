package models

import "time"

// MentorAvailability represents whether a mentor can take on more mentees
type MentorAvailability string

const (
	MentorAvailable MentorAvailability = "AVAILABLE"
	MentorFull      MentorAvailability = "FULL"
)

// DefaultMaxMentees is the mentee cap applied when a mentor profile is
// created without an explicit limit.
const DefaultMaxMentees = 3

// MentorProfile is the mentorship-relevant subset of an alumni record.
// Invariants maintained by the assignment engine:
//   - CurrentMenteeCount equals the number of active assignments held
//   - Availability is FULL exactly when CurrentMenteeCount >= MaxMentees
type MentorProfile struct {
	UserID             int64              `json:"userId" db:"user_id"`
	CurrentMenteeCount int                `json:"currentMenteeCount" db:"current_mentee_count"`
	MaxMentees         int                `json:"maxMentees" db:"max_mentees"`
	Availability       MentorAvailability `json:"availability" db:"availability"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" db:"updated_at"`

	// Related entities
	User *User `json:"user,omitempty"`
}
