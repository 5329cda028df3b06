package models

import "time"

// MentorshipStatus represents a student's position in the mentorship program
type MentorshipStatus string

const (
	MentorshipAvailable MentorshipStatus = "AVAILABLE"
	MentorshipMentored  MentorshipStatus = "MENTORED"
	MentorshipCompleted MentorshipStatus = "COMPLETED"
)

// MenteeProfile is the mentorship-relevant subset of a student record.
// MentorID is owned by at most one mentor at a time; it is nil while the
// student has no active assignment.
type MenteeProfile struct {
	UserID              int64            `json:"userId" db:"user_id"`
	MentorID            *int64           `json:"mentorId,omitempty" db:"mentor_id"`
	MentorshipStatus    MentorshipStatus `json:"mentorshipStatus" db:"mentorship_status"`
	MentorshipStartDate *time.Time       `json:"mentorshipStartDate,omitempty" db:"mentorship_start_date"`
	MentorshipEndDate   *time.Time       `json:"mentorshipEndDate,omitempty" db:"mentorship_end_date"`

	// Related entities
	User *User `json:"user,omitempty"`
}
