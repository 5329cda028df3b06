package dto

import (
	"time"

	"github.com/deniz/alumlink/internal/app/models"
)

// --- Request DTOs ---

// StartMentorshipRequest represents a mentor's bulk request to take on
// students as mentees
type StartMentorshipRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required,min=1,dive,gt=0"`
}

// AssignMentorRequest represents an admin single-pair assignment override
type AssignMentorRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
	MentorID  int64 `json:"mentorId" binding:"required,gt=0"`
}

// UnassignMentorRequest represents an admin request to end one specific
// mentor-student pairing
type UnassignMentorRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
	MentorID  int64 `json:"mentorId" binding:"required,gt=0"`
}

// --- Response DTOs ---

// UserBasicResponse represents minimal user information
type UserBasicResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// MentorResponse represents a mentor in the directory listing
type MentorResponse struct {
	UserID             int64  `json:"userId"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Department         string `json:"department"`
	CurrentMenteeCount int    `json:"currentMenteeCount"`
	MaxMentees         int    `json:"maxMentees"`
	Availability       string `json:"availability"`
}

// MentorListResponse represents the mentor directory
type MentorListResponse struct {
	Mentors []MentorResponse `json:"mentors"`
}

// AssignmentResponse represents a mentorship assignment
type AssignmentResponse struct {
	ID          int64      `json:"id"`
	MentorID    int64      `json:"mentorId"`
	StudentID   int64      `json:"studentId"`
	MentorName  string     `json:"mentorName,omitempty"`
	StudentName string     `json:"studentName,omitempty"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// AssignmentListResponse is the dashboard snapshot: every active assignment
// plus the mentors and students currently without a pairing.
type AssignmentListResponse struct {
	Assignments        []AssignmentResponse `json:"assignments"`
	UnassignedMentors  []MentorResponse     `json:"unassignedMentors"`
	UnassignedStudents []UserBasicResponse  `json:"unassignedStudents"`
}

// AssignmentOutcome reports the per-student result of a bulk assignment.
// Bulk assignment is best effort: one student failing does not roll back
// the others.
type AssignmentOutcome struct {
	StudentID int64  `json:"studentId"`
	Assigned  bool   `json:"assigned"`
	Reason    string `json:"reason,omitempty"`
}

// BulkAssignmentResponse represents the result of an admin bulk assignment
type BulkAssignmentResponse struct {
	MentorID int64               `json:"mentorId"`
	Outcomes []AssignmentOutcome `json:"outcomes"`
}

// Transform a models.MentorProfile to MentorResponse
func ToMentorResponse(mentor *models.MentorProfile) MentorResponse {
	response := MentorResponse{
		UserID:             mentor.UserID,
		CurrentMenteeCount: mentor.CurrentMenteeCount,
		MaxMentees:         mentor.MaxMentees,
		Availability:       string(mentor.Availability),
	}

	if mentor.User != nil {
		response.FirstName = mentor.User.FirstName
		response.LastName = mentor.User.LastName
		response.Department = mentor.User.Department
	}

	return response
}

// Transform a models.User to UserBasicResponse
func ToUserBasicResponse(user *models.User) UserBasicResponse {
	if user == nil {
		return UserBasicResponse{}
	}
	return UserBasicResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

// Transform a models.Assignment to AssignmentResponse
func ToAssignmentResponse(assignment *models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          assignment.ID,
		MentorID:    assignment.MentorID,
		StudentID:   assignment.StudentID,
		MentorName:  assignment.MentorName,
		StudentName: assignment.StudentName,
		Status:      string(assignment.Status),
		StartDate:   assignment.StartDate,
		EndDate:     assignment.EndDate,
	}
}
