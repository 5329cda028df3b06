package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/pkg/apperrors"
)

// MenteeRepository handles database operations for mentee records
type MenteeRepository struct {
	db *pgxpool.Pool
}

// NewMenteeRepository creates a new MenteeRepository
func NewMenteeRepository(db *pgxpool.Pool) *MenteeRepository {
	return &MenteeRepository{db: db}
}

// GetByID retrieves a mentee profile together with its user record
func (r *MenteeRepository) GetByID(ctx context.Context, userID int64) (*models.MenteeProfile, error) {
	query := `
		SELECT
			me.user_id, me.mentor_id, me.mentorship_status, me.mentorship_start_date, me.mentorship_end_date,
			u.id, u.email, u.first_name, u.last_name, u.role_type, u.department, u.is_active
		FROM mentees me
		JOIN users u ON me.user_id = u.id
		WHERE me.user_id = $1
	`

	var mentee models.MenteeProfile
	var user models.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&mentee.UserID,
		&mentee.MentorID,
		&mentee.MentorshipStatus,
		&mentee.MentorshipStartDate,
		&mentee.MentorshipEndDate,
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.RoleType,
		&user.Department,
		&user.IsActive,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving mentee: %w", err)
	}

	mentee.User = &user
	return &mentee, nil
}

// SetMentor links the mentee to a mentor and marks the mentorship as started
func (r *MenteeRepository) SetMentor(ctx context.Context, studentID, mentorID int64) error {
	query := `
		UPDATE mentees
		SET mentor_id = $2,
			mentorship_status = 'MENTORED',
			mentorship_start_date = CURRENT_TIMESTAMP,
			mentorship_end_date = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`

	result, err := r.db.Exec(ctx, query, studentID, mentorID)
	if err != nil {
		return fmt.Errorf("error setting mentee mentor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// ClearMentor detaches the mentee from its mentor and records the end date
func (r *MenteeRepository) ClearMentor(ctx context.Context, studentID int64) error {
	query := `
		UPDATE mentees
		SET mentor_id = NULL,
			mentorship_status = 'AVAILABLE',
			mentorship_end_date = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`

	result, err := r.db.Exec(ctx, query, studentID)
	if err != nil {
		return fmt.Errorf("error clearing mentee mentor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// ListWithoutMentor retrieves mentees who currently have no mentor
func (r *MenteeRepository) ListWithoutMentor(ctx context.Context) ([]*models.MenteeProfile, error) {
	query := `
		SELECT
			me.user_id, me.mentor_id, me.mentorship_status, me.mentorship_start_date, me.mentorship_end_date,
			u.id, u.email, u.first_name, u.last_name, u.role_type, u.department, u.is_active
		FROM mentees me
		JOIN users u ON me.user_id = u.id
		WHERE me.mentor_id IS NULL
		ORDER BY u.first_name, u.last_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing mentees: %w", err)
	}
	defer rows.Close()

	var mentees []*models.MenteeProfile
	for rows.Next() {
		var mentee models.MenteeProfile
		var user models.User
		err := rows.Scan(
			&mentee.UserID,
			&mentee.MentorID,
			&mentee.MentorshipStatus,
			&mentee.MentorshipStartDate,
			&mentee.MentorshipEndDate,
			&user.ID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.RoleType,
			&user.Department,
			&user.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning mentee row: %w", err)
		}
		mentee.User = &user
		mentees = append(mentees, &mentee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentee rows: %w", err)
	}

	return mentees, nil
}

// Create inserts a mentee record for an existing user
func (r *MenteeRepository) Create(ctx context.Context, mentee *models.MenteeProfile) error {
	query := `
		INSERT INTO mentees (user_id, mentor_id, mentorship_status)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query,
		mentee.UserID,
		mentee.MentorID,
		mentee.MentorshipStatus,
	)
	if err != nil {
		return fmt.Errorf("error creating mentee: %w", err)
	}

	return nil
}
