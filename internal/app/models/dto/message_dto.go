package dto

import (
	"time"

	"github.com/deniz/alumlink/internal/app/models"
)

// --- Request DTOs ---

// SendMessageRequest represents data for sending a message. Sent as
// multipart/form-data so an attachment can ride along; content may be empty
// when a file is attached.
type SendMessageRequest struct {
	Content   string `form:"content"`
	StudentID *int64 `form:"studentId"`
}

// GetMessagesRequest represents filter parameters for listing messages
type GetMessagesRequest struct {
	StudentID *int64     `form:"studentId,omitempty"`
	Before    *time.Time `form:"before,omitempty"`
	Limit     int        `form:"limit,default=50" binding:"min=0,max=200"`
}

// ReactionRequest represents data for reacting to a message
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

// --- Response DTOs ---

// ReactionResponse represents a single reaction on a message
type ReactionResponse struct {
	UserID    int64     `json:"userId"`
	UserRole  string    `json:"userRole"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageFileResponse represents attachment details on a message
type MessageFileResponse struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// MessageResponse represents a mentorship message
type MessageResponse struct {
	ID         int64                `json:"id"`
	MentorID   int64                `json:"mentorId"`
	StudentID  int64                `json:"studentId"`
	SenderRole string               `json:"senderRole"`
	Content    string               `json:"content"`
	IsGroup    bool                 `json:"isGroup"`
	Read       bool                 `json:"read"`
	CreatedAt  time.Time            `json:"createdAt"`
	File       *MessageFileResponse `json:"file,omitempty"`
	Reactions  []ReactionResponse   `json:"reactions,omitempty"`
}

// MessageListResponse represents a list of messages
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// GroupSendResponse reports the result of a group send. Delivery is best
// effort: Delivered counts the recipients whose copy was written.
type GroupSendResponse struct {
	SendEventID string `json:"sendEventId"`
	Delivered   int    `json:"delivered"`
	Recipients  int    `json:"recipients"`
}

// Transform a models.Message to MessageResponse
func ToMessageResponse(message *models.Message) MessageResponse {
	response := MessageResponse{
		ID:         message.ID,
		MentorID:   message.MentorID,
		StudentID:  message.StudentID,
		SenderRole: string(message.SenderRole),
		Content:    message.Content,
		IsGroup:    message.IsGroup,
		Read:       message.Read,
		CreatedAt:  message.CreatedAt,
	}

	if message.File != nil {
		response.File = &MessageFileResponse{
			ID:       message.File.ID,
			FileName: message.File.FileName,
			FileURL:  message.File.FileURL,
			FileType: message.File.FileType,
			FileSize: message.File.FileSize,
		}
	}

	for _, reaction := range message.Reactions {
		response.Reactions = append(response.Reactions, ReactionResponse{
			UserID:    reaction.UserID,
			UserRole:  string(reaction.UserRole),
			Emoji:     reaction.Emoji,
			CreatedAt: reaction.CreatedAt,
		})
	}

	return response
}

// ToMessageListResponse transforms a slice of messages into a list response
func ToMessageListResponse(messages []*models.Message) MessageListResponse {
	response := MessageListResponse{
		Messages: make([]MessageResponse, 0, len(messages)),
	}
	for _, message := range messages {
		response.Messages = append(response.Messages, ToMessageResponse(message))
	}
	return response
}
