package models

// RoleType defines the portal user role type
type RoleType string

const (
	RoleAlumni  RoleType = "ALUMNI"
	RoleStudent RoleType = "STUDENT"
	RoleAdmin   RoleType = "ADMIN"
)

// Party identifies the acting side of a mentorship operation: exactly one
// role and the user id it belongs to. Sender/caller polymorphism is carried
// through this tag instead of parallel optional mentor/student fields.
type Party struct {
	Role   RoleType
	UserID int64
}

// Channel is the addressable conversation context between one mentor and one
// student. Group traffic reuses the same key per recipient copy.
type Channel struct {
	MentorID  int64
	StudentID int64
}
