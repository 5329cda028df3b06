package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/app/models/dto"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
	"github.com/deniz/alumlink/internal/pkg/filestorage"
)

// MessageStore is the message persistence surface
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListChannel(ctx context.Context, mentorID, studentID int64, before *time.Time, limit int) ([]*models.Message, error)
	ListGroupForMentor(ctx context.Context, mentorID int64) ([]*models.Message, error)
	ListGroupForStudent(ctx context.Context, mentorID, studentID int64) ([]*models.Message, error)
	MarkChannelRead(ctx context.Context, mentorID, studentID int64, senderRole models.RoleType) error
	MarkGroupReadForMentor(ctx context.Context, mentorID int64) error
	MarkGroupReadForStudent(ctx context.Context, mentorID, studentID int64) error
	SoftDelete(ctx context.Context, id int64) error
	UpsertReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, messageID, userID int64, userRole models.RoleType) error
}

// FileStore is the attachment metadata persistence surface
type FileStore interface {
	Create(ctx context.Context, file *models.File) (int64, error)
}

// MessageService defines the interface for mentorship messaging operations
type MessageService interface {
	ListDirect(ctx context.Context, caller models.Party, filter *dto.GetMessagesRequest) (*dto.MessageListResponse, error)
	SendDirect(ctx context.Context, caller models.Party, req *dto.SendMessageRequest, file *multipart.FileHeader) (*dto.MessageResponse, error)
	ListGroup(ctx context.Context, caller models.Party) (*dto.MessageListResponse, error)
	SendGroup(ctx context.Context, caller models.Party, req *dto.SendMessageRequest, file *multipart.FileHeader) (*dto.GroupSendResponse, error)
	DeleteMessage(ctx context.Context, caller models.Party, messageID int64) error
	React(ctx context.Context, caller models.Party, messageID int64, emoji string) (*dto.ReactionResponse, error)
	RemoveReaction(ctx context.Context, caller models.Party, messageID int64) error
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messages    MessageStore
	files       FileStore
	resolver    ChannelResolver
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messages MessageStore,
	files FileStore,
	resolver ChannelResolver,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messages:    messages,
		files:       files,
		resolver:    resolver,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// ListDirect retrieves the caller's one-to-one conversation. Listing doubles
// as the read receipt: the counterpart's unread messages are flagged read
// before the page is returned.
func (s *messageServiceImpl) ListDirect(ctx context.Context, caller models.Party, filter *dto.GetMessagesRequest) (*dto.MessageListResponse, error) {
	channel, err := s.resolver.Direct(ctx, caller, filter.StudentID)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkChannelRead(ctx, channel.MentorID, channel.StudentID, counterpartRole(caller.Role)); err != nil {
		s.logger.Warn().Err(err).
			Int64("mentorID", channel.MentorID).
			Int64("studentID", channel.StudentID).
			Msg("Failed to mark messages read")
	}

	messages, err := s.messages.ListChannel(ctx, channel.MentorID, channel.StudentID, filter.Before, filter.Limit)
	if err != nil {
		return nil, err
	}

	response := dto.ToMessageListResponse(messages)
	return &response, nil
}

// SendDirect writes one message onto the caller's one-to-one channel. The
// attachment blob is persisted before the message row; a failed blob write
// aborts the send.
func (s *messageServiceImpl) SendDirect(ctx context.Context, caller models.Party, req *dto.SendMessageRequest, file *multipart.FileHeader) (*dto.MessageResponse, error) {
	channel, err := s.resolver.Direct(ctx, caller, req.StudentID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && file == nil {
		return nil, apperrors.ErrEmptyMessage
	}

	fileID, err := s.saveAttachment(ctx, caller.UserID, file)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		MentorID:   channel.MentorID,
		StudentID:  channel.StudentID,
		SenderRole: caller.Role,
		Content:    content,
		FileID:     fileID,
	}

	if _, err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	// Reload to pick up the attachment join
	created, err := s.messages.GetByID(ctx, message.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("messageID", created.ID).
		Int64("mentorID", channel.MentorID).
		Int64("studentID", channel.StudentID).
		Msg("Message sent")

	response := dto.ToMessageResponse(created)
	return &response, nil
}

// ListGroup retrieves the caller's view of the group channel. Mentors see one
// entry per send event; students see the copies on their own channel. Either
// way, listing marks exactly the rows the caller's view shows as read.
func (s *messageServiceImpl) ListGroup(ctx context.Context, caller models.Party) (*dto.MessageListResponse, error) {
	mentorID, _, err := s.resolver.Group(ctx, caller)
	if err != nil {
		return nil, err
	}

	var messages []*models.Message
	switch caller.Role {
	case models.RoleAlumni:
		if err := s.messages.MarkGroupReadForMentor(ctx, mentorID); err != nil {
			s.logger.Warn().Err(err).Int64("mentorID", mentorID).Msg("Failed to mark group messages read")
		}
		messages, err = s.messages.ListGroupForMentor(ctx, mentorID)
	default:
		if err := s.messages.MarkGroupReadForStudent(ctx, mentorID, caller.UserID); err != nil {
			s.logger.Warn().Err(err).
				Int64("mentorID", mentorID).
				Int64("studentID", caller.UserID).
				Msg("Failed to mark group messages read")
		}
		messages, err = s.messages.ListGroupForStudent(ctx, mentorID, caller.UserID)
	}
	if err != nil {
		return nil, err
	}

	response := dto.ToMessageListResponse(messages)
	return &response, nil
}

// SendGroup fans one logical message out to every channel of the group: one
// copy per active mentee, all stamped with the same send event id. Delivery
// is best effort per recipient; the response reports how many copies landed.
func (s *messageServiceImpl) SendGroup(ctx context.Context, caller models.Party, req *dto.SendMessageRequest, file *multipart.FileHeader) (*dto.GroupSendResponse, error) {
	mentorID, menteeIDs, err := s.resolver.Group(ctx, caller)
	if err != nil {
		return nil, err
	}

	if len(menteeIDs) == 0 {
		return nil, apperrors.ErrNoRecipients
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && file == nil {
		return nil, apperrors.ErrEmptyMessage
	}

	// One shared attachment record for all copies
	fileID, err := s.saveAttachment(ctx, caller.UserID, file)
	if err != nil {
		return nil, err
	}

	sendEventID := uuid.New().String()
	delivered := 0

	for _, menteeID := range menteeIDs {
		message := &models.Message{
			MentorID:    mentorID,
			StudentID:   menteeID,
			SenderRole:  caller.Role,
			Content:     content,
			FileID:      fileID,
			IsGroup:     true,
			SendEventID: &sendEventID,
		}

		if _, err := s.messages.Create(ctx, message); err != nil {
			s.logger.Error().Err(err).
				Int64("mentorID", mentorID).
				Int64("studentID", menteeID).
				Str("sendEventID", sendEventID).
				Msg("Failed to deliver group message copy")
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return nil, fmt.Errorf("group send %s delivered no copies: %w", sendEventID, apperrors.ErrUpstreamFailure)
	}

	s.logger.Info().
		Int64("mentorID", mentorID).
		Str("sendEventID", sendEventID).
		Int("delivered", delivered).
		Int("recipients", len(menteeIDs)).
		Msg("Group message sent")

	return &dto.GroupSendResponse{
		SendEventID: sendEventID,
		Delivered:   delivered,
		Recipients:  len(menteeIDs),
	}, nil
}

// DeleteMessage soft-deletes a message. Only the author (or an admin) may
// delete; the row is hidden from listings, never removed.
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, caller models.Party, messageID int64) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	if message.IsDeleted {
		return apperrors.ErrMessageNotFound
	}

	if caller.Role != models.RoleAdmin && !message.SentBy(caller) {
		return apperrors.NewForbiddenError("Only the sender can delete a message")
	}

	if err := s.messages.SoftDelete(ctx, messageID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("messageID", messageID).
		Int64("userID", caller.UserID).
		Msg("Message deleted")

	return nil
}

// React stores the caller's reaction to a message, replacing any previous one
func (s *messageServiceImpl) React(ctx context.Context, caller models.Party, messageID int64, emoji string) (*dto.ReactionResponse, error) {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.IsDeleted {
		return nil, apperrors.ErrMessageNotFound
	}

	if err := s.requireParticipant(caller, message); err != nil {
		return nil, err
	}

	reaction := &models.Reaction{
		MessageID: messageID,
		UserID:    caller.UserID,
		UserRole:  caller.Role,
		Emoji:     emoji,
	}

	if err := s.messages.UpsertReaction(ctx, reaction); err != nil {
		return nil, err
	}

	return &dto.ReactionResponse{
		UserID:    reaction.UserID,
		UserRole:  string(reaction.UserRole),
		Emoji:     reaction.Emoji,
		CreatedAt: reaction.CreatedAt,
	}, nil
}

// RemoveReaction deletes the caller's reaction from a message
func (s *messageServiceImpl) RemoveReaction(ctx context.Context, caller models.Party, messageID int64) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	if err := s.requireParticipant(caller, message); err != nil {
		return err
	}

	return s.messages.DeleteReaction(ctx, messageID, caller.UserID, caller.Role)
}

// saveAttachment persists the blob and its metadata row, returning the file
// id to hang on the message. Returns (nil, nil) when there is no attachment.
func (s *messageServiceImpl) saveAttachment(ctx context.Context, uploaderID int64, file *multipart.FileHeader) (*int64, error) {
	if file == nil {
		return nil, nil
	}

	savedPath, err := s.fileStorage.SaveFile(file)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", file.Filename).Msg("Failed to store attachment")
		return nil, fmt.Errorf("failed to store attachment: %w", apperrors.ErrUpstreamFailure)
	}

	fileRecord := &models.File{
		FileName:   file.Filename,
		FilePath:   savedPath,
		FileURL:    savedPath,
		FileSize:   file.Size,
		FileType:   file.Header.Get("Content-Type"),
		UploadedBy: uploaderID,
	}

	fileID, err := s.files.Create(ctx, fileRecord)
	if err != nil {
		// The blob is orphaned; leave cleanup to storage maintenance
		return nil, err
	}

	return &fileID, nil
}

// requireParticipant verifies the caller belongs to the message's channel
func (s *messageServiceImpl) requireParticipant(caller models.Party, message *models.Message) error {
	switch caller.Role {
	case models.RoleAlumni:
		if message.MentorID == caller.UserID {
			return nil
		}
	case models.RoleStudent:
		if message.StudentID == caller.UserID {
			return nil
		}
	}
	return apperrors.NewForbiddenError("User is not a participant in this conversation")
}

// counterpartRole returns the opposite side of a channel
func counterpartRole(role models.RoleType) models.RoleType {
	if role == models.RoleAlumni {
		return models.RoleStudent
	}
	return models.RoleAlumni
}
