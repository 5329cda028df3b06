package models

import "time"

// Reaction is a single emoji reaction on a message. A user (identified by id
// plus role) holds at most one reaction per message; a new reaction replaces
// the previous one.
type Reaction struct {
	ID        int64     `json:"id" db:"id"`
	MessageID int64     `json:"messageId" db:"message_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	UserRole  RoleType  `json:"userRole" db:"user_role"`
	Emoji     string    `json:"emoji" db:"emoji"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Message is one entry in a mentorship channel. The (MentorID, StudentID)
// pair identifies the channel; for group traffic StudentID names the specific
// recipient copy and SendEventID ties the copies of one logical send together.
// Messages are soft-deleted only: IsDeleted hides a row from channel listings
// while keeping it retrievable by id.
type Message struct {
	ID          int64     `json:"id" db:"id"`
	MentorID    int64     `json:"mentorId" db:"mentor_id"`
	StudentID   int64     `json:"studentId" db:"student_id"`
	SenderRole  RoleType  `json:"senderRole" db:"sender_role"`
	Content     string    `json:"content" db:"content"`
	FileID      *int64    `json:"fileId,omitempty" db:"file_id"`
	IsGroup     bool      `json:"isGroup" db:"is_group"`
	IsDeleted   bool      `json:"isDeleted" db:"is_deleted"`
	Read        bool      `json:"read" db:"read"`
	SendEventID *string   `json:"sendEventId,omitempty" db:"send_event_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	File      *File      `json:"file,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
}

// SentBy reports whether the given party authored this message. Mentor-side
// ownership is matched through MentorID, student-side through StudentID.
func (m *Message) SentBy(p Party) bool {
	switch p.Role {
	case RoleAlumni:
		return m.SenderRole == RoleAlumni && m.MentorID == p.UserID
	case RoleStudent:
		return m.SenderRole == RoleStudent && m.StudentID == p.UserID
	default:
		return false
	}
}
