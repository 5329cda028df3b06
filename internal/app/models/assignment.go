package models

import "time"

// AssignmentStatus represents the lifecycle state of a mentor-student pairing.
// Transitions: active -> completed or active -> terminated. Terminal rows are
// never reactivated; a fresh pairing creates a new row.
type AssignmentStatus string

const (
	AssignmentActive     AssignmentStatus = "active"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentTerminated AssignmentStatus = "terminated"
)

// Assignment pairs one mentor with one student. A student holds at most one
// active assignment; a mentor holds up to MaxMentees active assignments.
type Assignment struct {
	ID        int64            `json:"id" db:"id"`
	MentorID  int64            `json:"mentorId" db:"mentor_id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	Status    AssignmentStatus `json:"status" db:"status"`
	StartDate time.Time        `json:"startDate" db:"start_date"`
	EndDate   *time.Time       `json:"endDate,omitempty" db:"end_date"`

	// Joined display names, populated by list queries
	MentorName  string `json:"mentorName,omitempty" db:"-"`
	StudentName string `json:"studentName,omitempty" db:"-"`
}
