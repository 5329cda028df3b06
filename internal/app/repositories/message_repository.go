package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

// MessageRepository handles database operations for mentorship messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message row into the database
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) (int64, error) {
	query := `
		INSERT INTO mentorship_messages (
			mentor_id, student_id, sender_role, content, file_id, is_group, send_event_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	var id int64
	var createdAt, updatedAt time.Time
	err := r.db.QueryRow(ctx, query,
		message.MentorID,
		message.StudentID,
		message.SenderRole,
		message.Content,
		message.FileID,
		message.IsGroup,
		message.SendEventID,
	).Scan(&id, &createdAt, &updatedAt)

	if err != nil {
		return 0, fmt.Errorf("error creating message: %w", err)
	}

	message.ID = id
	message.CreatedAt = createdAt
	message.UpdatedAt = updatedAt

	return id, nil
}

// GetByID retrieves a message by its ID, including its attachment and reactions
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT
			m.id, m.mentor_id, m.student_id, m.sender_role, m.content, m.file_id,
			m.is_group, m.is_deleted, m.read, m.send_event_id, m.created_at, m.updated_at,
			f.id, f.file_name, f.file_url, f.file_type, f.file_size
		FROM mentorship_messages m
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.id = $1
	`

	message, err := r.scanMessageWithFile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}

	reactions, err := r.ListReactions(ctx, []int64{message.ID})
	if err != nil {
		return nil, err
	}
	message.Reactions = reactions[message.ID]

	return message, nil
}

// ListChannel retrieves non-deleted messages on a (mentor, student) channel in
// chronological order, including attachments and reactions.
func (r *MessageRepository) ListChannel(ctx context.Context, mentorID, studentID int64, before *time.Time, limit int) ([]*models.Message, error) {
	queryBuilder := squirrel.Select(
		"m.id", "m.mentor_id", "m.student_id", "m.sender_role", "m.content", "m.file_id",
		"m.is_group", "m.is_deleted", "m.read", "m.send_event_id", "m.created_at", "m.updated_at",
		"f.id", "f.file_name", "f.file_url", "f.file_type", "f.file_size",
	).
		From("mentorship_messages m").
		LeftJoin("files f ON m.file_id = f.id").
		Where("m.mentor_id = ?", mentorID).
		Where("m.student_id = ?", studentID).
		Where("m.is_deleted = FALSE").
		OrderBy("m.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if before != nil {
		queryBuilder = queryBuilder.Where("m.created_at < ?", before)
	}

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryMessages(ctx, sql, args...)
}

// ListGroupForMentor retrieves the mentor's group sends, one row per send
// event. Fan-out writes a copy per recipient; DISTINCT ON collapses the
// copies back into the single logical message the mentor sent or received.
func (r *MessageRepository) ListGroupForMentor(ctx context.Context, mentorID int64) ([]*models.Message, error) {
	query := `
		SELECT t.id, t.mentor_id, t.student_id, t.sender_role, t.content, t.file_id,
			t.is_group, t.is_deleted, t.read, t.send_event_id, t.created_at, t.updated_at,
			t.f_id, t.file_name, t.file_url, t.file_type, t.file_size
		FROM (
			SELECT DISTINCT ON (m.send_event_id)
				m.id, m.mentor_id, m.student_id, m.sender_role, m.content, m.file_id,
				m.is_group, m.is_deleted, m.read, m.send_event_id, m.created_at, m.updated_at,
				f.id AS f_id, f.file_name, f.file_url, f.file_type, f.file_size
			FROM mentorship_messages m
			LEFT JOIN files f ON m.file_id = f.id
			WHERE m.mentor_id = $1 AND m.is_group = TRUE AND m.is_deleted = FALSE
			ORDER BY m.send_event_id, m.id
		) t
		ORDER BY t.created_at ASC
	`

	return r.queryMessages(ctx, query, mentorID)
}

// ListGroupForStudent retrieves the group messages visible on a student's own
// channel in chronological order.
func (r *MessageRepository) ListGroupForStudent(ctx context.Context, mentorID, studentID int64) ([]*models.Message, error) {
	query := `
		SELECT
			m.id, m.mentor_id, m.student_id, m.sender_role, m.content, m.file_id,
			m.is_group, m.is_deleted, m.read, m.send_event_id, m.created_at, m.updated_at,
			f.id, f.file_name, f.file_url, f.file_type, f.file_size
		FROM mentorship_messages m
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.mentor_id = $1 AND m.student_id = $2 AND m.is_group = TRUE AND m.is_deleted = FALSE
		ORDER BY m.created_at ASC
	`

	return r.queryMessages(ctx, query, mentorID, studentID)
}

// MarkChannelRead flags the counterpart's unread messages on a channel as
// read. Listing a conversation is the implicit read receipt.
func (r *MessageRepository) MarkChannelRead(ctx context.Context, mentorID, studentID int64, senderRole models.RoleType) error {
	query := `
		UPDATE mentorship_messages
		SET read = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE mentor_id = $1 AND student_id = $2 AND sender_role = $3
			AND read = FALSE AND is_deleted = FALSE
	`

	_, err := r.db.Exec(ctx, query, mentorID, studentID, senderRole)
	if err != nil {
		return fmt.Errorf("error marking messages read: %w", err)
	}

	return nil
}

// MarkGroupReadForMentor flags the mentor's unread student group traffic as
// read. The mentor's view shows one representative copy per send event (the
// lowest-id row, matching the DISTINCT ON listing), so only that copy is
// touched; the copies addressed to other mentees keep their own read state.
func (r *MessageRepository) MarkGroupReadForMentor(ctx context.Context, mentorID int64) error {
	query := `
		UPDATE mentorship_messages
		SET read = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE sender_role = 'STUDENT' AND read = FALSE
			AND id IN (
				SELECT MIN(id)
				FROM mentorship_messages
				WHERE mentor_id = $1 AND is_group = TRUE AND is_deleted = FALSE
				GROUP BY send_event_id
			)
	`

	_, err := r.db.Exec(ctx, query, mentorID)
	if err != nil {
		return fmt.Errorf("error marking group messages read: %w", err)
	}

	return nil
}

// MarkGroupReadForStudent flags the mentor-authored group messages on the
// student's own channel as read.
func (r *MessageRepository) MarkGroupReadForStudent(ctx context.Context, mentorID, studentID int64) error {
	query := `
		UPDATE mentorship_messages
		SET read = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE mentor_id = $1 AND student_id = $2 AND is_group = TRUE
			AND sender_role = 'ALUMNI' AND read = FALSE AND is_deleted = FALSE
	`

	_, err := r.db.Exec(ctx, query, mentorID, studentID)
	if err != nil {
		return fmt.Errorf("error marking group messages read: %w", err)
	}

	return nil
}

// SoftDelete hides a message without removing the row. Content and
// attachment references stay intact for audit.
func (r *MessageRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE mentorship_messages
		SET is_deleted = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND is_deleted = FALSE
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}

// UpsertReaction stores a user's reaction to a message. Each user holds at
// most one reaction per message; reacting again replaces the emoji.
func (r *MessageRepository) UpsertReaction(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO message_reactions (message_id, user_id, user_role, emoji)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, user_id, user_role)
		DO UPDATE SET emoji = EXCLUDED.emoji, created_at = CURRENT_TIMESTAMP
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		reaction.MessageID,
		reaction.UserID,
		reaction.UserRole,
		reaction.Emoji,
	).Scan(&reaction.ID, &reaction.CreatedAt)

	if err != nil {
		return fmt.Errorf("error saving reaction: %w", err)
	}

	return nil
}

// DeleteReaction removes a user's reaction from a message
func (r *MessageRepository) DeleteReaction(ctx context.Context, messageID, userID int64, userRole models.RoleType) error {
	query := `DELETE FROM message_reactions WHERE message_id = $1 AND user_id = $2 AND user_role = $3`

	_, err := r.db.Exec(ctx, query, messageID, userID, userRole)
	if err != nil {
		return fmt.Errorf("error removing reaction: %w", err)
	}

	return nil
}

// ListReactions retrieves reactions for a set of messages, keyed by message ID
func (r *MessageRepository) ListReactions(ctx context.Context, messageIDs []int64) (map[int64][]models.Reaction, error) {
	reactions := make(map[int64][]models.Reaction)
	if len(messageIDs) == 0 {
		return reactions, nil
	}

	query := `
		SELECT id, message_id, user_id, user_role, emoji, created_at
		FROM message_reactions
		WHERE message_id = ANY($1)
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("error listing reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reaction models.Reaction
		err := rows.Scan(
			&reaction.ID,
			&reaction.MessageID,
			&reaction.UserID,
			&reaction.UserRole,
			&reaction.Emoji,
			&reaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reaction row: %w", err)
		}
		reactions[reaction.MessageID] = append(reactions[reaction.MessageID], reaction)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction rows: %w", err)
	}

	return reactions, nil
}

// queryMessages runs a message select with the standard column layout and
// attaches reactions to the scanned rows.
func (r *MessageRepository) queryMessages(ctx context.Context, sql string, args ...interface{}) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	var messageIDs []int64
	for rows.Next() {
		message, err := r.scanMessageWithFile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, message)
		messageIDs = append(messageIDs, message.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	reactions, err := r.ListReactions(ctx, messageIDs)
	if err != nil {
		return nil, err
	}
	for _, message := range messages {
		message.Reactions = reactions[message.ID]
	}

	return messages, nil
}

// scanMessageWithFile scans one message row with left-joined file columns
func (r *MessageRepository) scanMessageWithFile(row pgx.Row) (*models.Message, error) {
	var message models.Message
	var file models.File
	var fileID *int64
	var fileName, fileURL, fileType *string
	var fileSize *int64

	err := row.Scan(
		&message.ID,
		&message.MentorID,
		&message.StudentID,
		&message.SenderRole,
		&message.Content,
		&message.FileID,
		&message.IsGroup,
		&message.IsDeleted,
		&message.Read,
		&message.SendEventID,
		&message.CreatedAt,
		&message.UpdatedAt,
		&fileID,
		&fileName,
		&fileURL,
		&fileType,
		&fileSize,
	)
	if err != nil {
		return nil, err
	}

	if fileID != nil && message.FileID != nil {
		file.ID = *fileID
		if fileName != nil {
			file.FileName = *fileName
		}
		if fileURL != nil {
			file.FileURL = *fileURL
		}
		if fileType != nil {
			file.FileType = *fileType
		}
		if fileSize != nil {
			file.FileSize = *fileSize
		}
		message.File = &file
	}

	return &message, nil
}
